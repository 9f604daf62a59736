//go:build !windows

package diskspace

import "golang.org/x/sys/unix"

// availableBytes returns the free space visible to unprivileged writers on
// the filesystem holding dir, or 0 when it cannot be determined.
func availableBytes(dir string) int64 {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0
	}
	return int64(stat.Bavail) * int64(stat.Bsize)
}
