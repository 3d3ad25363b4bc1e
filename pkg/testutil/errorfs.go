package testutil

import (
	"io/fs"
	"sync"

	"github.com/arthur-debert/remnant/pkg/types"
)

// ErrorFS wraps a types.FS and fails operations on chosen paths
type ErrorFS struct {
	types.FS

	mu         sync.RWMutex
	errorPaths map[string]error
	reads      map[string]int
}

// NewErrorFS wraps inner
func NewErrorFS(inner types.FS) *ErrorFS {
	return &ErrorFS{
		FS:         inner,
		errorPaths: make(map[string]error),
		reads:      make(map[string]int),
	}
}

// Fail makes every operation on path return err
func (e *ErrorFS) Fail(path string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errorPaths[path] = err
}

// ReadDirCount returns how many times ReadDir was called for path
func (e *ErrorFS) ReadDirCount(path string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reads[path]
}

func (e *ErrorFS) check(path string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.errorPaths[path]
}

func (e *ErrorFS) Stat(name string) (fs.FileInfo, error) {
	if err := e.check(name); err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	return e.FS.Stat(name)
}

func (e *ErrorFS) Lstat(name string) (fs.FileInfo, error) {
	if err := e.check(name); err != nil {
		return nil, &fs.PathError{Op: "lstat", Path: name, Err: err}
	}
	return e.FS.Lstat(name)
}

func (e *ErrorFS) ReadFile(name string) ([]byte, error) {
	if err := e.check(name); err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	return e.FS.ReadFile(name)
}

func (e *ErrorFS) Open(name string) (types.File, error) {
	if err := e.check(name); err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return e.FS.Open(name)
}

func (e *ErrorFS) ReadDir(name string) ([]fs.DirEntry, error) {
	e.mu.Lock()
	e.reads[name]++
	e.mu.Unlock()
	if err := e.check(name); err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	return e.FS.ReadDir(name)
}
