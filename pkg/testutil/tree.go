package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/remnant/pkg/filesystem"
	"github.com/arthur-debert/remnant/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// Tree builds an in-memory directory tree for a test
type Tree struct {
	t   testing.TB
	Mem afero.Fs
	FS  types.FS
}

// NewTree creates an empty in-memory tree
func NewTree(t testing.TB) *Tree {
	t.Helper()
	mem := afero.NewMemMapFs()
	return &Tree{t: t, Mem: mem, FS: filesystem.NewAferoFS(mem)}
}

// Dir creates directories (and their parents)
func (tr *Tree) Dir(dirs ...string) *Tree {
	tr.t.Helper()
	for _, d := range dirs {
		require.NoError(tr.t, tr.Mem.MkdirAll(d, 0755))
	}
	return tr
}

// File writes a file, creating its parent directory
func (tr *Tree) File(path, content string) *Tree {
	tr.t.Helper()
	require.NoError(tr.t, tr.Mem.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(tr.t, afero.WriteFile(tr.Mem, path, []byte(content), 0644))
	return tr
}

// Files writes every path -> content pair
func (tr *Tree) Files(files map[string]string) *Tree {
	tr.t.Helper()
	for path, content := range files {
		tr.File(path, content)
	}
	return tr
}

// Bundle creates a minimal application bundle with the given Info.plist keys
func (tr *Tree) Bundle(path string, info map[string]string) *Tree {
	tr.t.Helper()
	return tr.File(filepath.Join(path, "Contents", "Info.plist"), Plist(info))
}
