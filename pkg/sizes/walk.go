package sizes

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/remnant/pkg/types"
)

// Walk measures path by visiting every entry below it. Logical size is the
// sum of file sizes; real size is the allocated block total where the
// platform reports it and the logical size otherwise. Symlinks are counted
// by their own size and never followed. Unreadable entries are skipped.
func Walk(ctx context.Context, fsys types.FS, path string) (real, logical int64) {
	info, err := fsys.Lstat(path)
	if err != nil {
		return 0, 0
	}
	return walk(ctx, fsys, path, info)
}

func walk(ctx context.Context, fsys types.FS, path string, info fs.FileInfo) (real, logical int64) {
	if !info.IsDir() {
		return entrySize(info)
	}

	real, logical = entrySize(info)
	if ctx.Err() != nil {
		return real, logical
	}

	entries, err := fsys.ReadDir(path)
	if err != nil {
		return real, logical
	}
	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		childInfo, err := fsys.Lstat(child)
		if err != nil {
			continue
		}
		r, l := walk(ctx, fsys, child, childInfo)
		real += r
		logical += l
	}
	return real, logical
}

func entrySize(info fs.FileInfo) (real, logical int64) {
	if info.IsDir() {
		// directory entries themselves carry no logical payload
		if r, ok := allocated(info); ok {
			return r, 0
		}
		return 0, 0
	}
	logical = info.Size()
	if r, ok := allocated(info); ok {
		return r, logical
	}
	return logical, logical
}
