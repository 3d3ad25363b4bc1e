package types

import (
	"io"
	"io/fs"
)

// File is an open file that supports random access reads
type File interface {
	io.Reader
	io.ReaderAt
	io.Closer
}

// FS is the read-only filesystem view used by discovery
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]fs.DirEntry, error)

	// Open opens a file for reading. Callers close it.
	Open(name string) (File, error)

	// Lstat does not follow symlinks. For testing, implementations can fall
	// back to Stat.
	Lstat(name string) (fs.FileInfo, error)
}
