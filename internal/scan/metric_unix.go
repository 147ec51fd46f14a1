//go:build !windows

package scan

import (
	"io/fs"
	"syscall"
)

// allocatedBytes returns the bytes actually allocated on storage.
// st_blocks is in 512-byte units regardless of the filesystem block size.
func allocatedBytes(info fs.FileInfo) (int64, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}

	return st.Blocks * 512, true //nolint:gosec // Block count comes from the kernel
}

// fileID identifies a file independently of its path. Hard links share one
// identity, which is what makes the visited set safe under link cycles.
type fileID struct {
	dev uint64
	ino uint64
}

func fileIDOf(info fs.FileInfo) (fileID, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileID{}, false
	}

	return fileID{dev: uint64(st.Dev), ino: uint64(st.Ino)}, true
}
