//go:build windows

package diskspace

import "golang.org/x/sys/windows"

// availableBytes returns the free space visible to unprivileged writers on
// the volume holding dir, or 0 when it cannot be determined.
func availableBytes(dir string) int64 {
	dirPtr, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return 0
	}

	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(dirPtr, &freeBytesAvailable, &totalBytes, &totalFreeBytes); err != nil {
		return 0
	}
	return int64(freeBytesAvailable)
}
