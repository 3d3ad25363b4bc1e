//go:build unix

package sizes

import (
	"io/fs"
	"syscall"
)

const blockSize = 512

// allocated returns the on-disk size of an entry from its stat blocks
func allocated(info fs.FileInfo) (int64, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok || st == nil {
		return 0, false
	}
	return int64(st.Blocks) * blockSize, true
}
