// Package diskspace checks free space on the filesystem receiving
// downloads.
package diskspace

import (
	"errors"
	"fmt"
)

// InsufficientSpaceError indicates the target filesystem cannot hold an
// asset of the announced size.
type InsufficientSpaceError struct {
	Path           string
	RequiredBytes  int64
	AvailableBytes int64
}

func (e *InsufficientSpaceError) Error() string {
	requiredMB := float64(e.RequiredBytes) / (1024 * 1024)
	availableMB := float64(e.AvailableBytes) / (1024 * 1024)
	return fmt.Sprintf("insufficient disk space for %s: need %.2f MB, have %.2f MB available",
		e.Path, requiredMB, availableMB)
}

// IsInsufficientSpaceError reports whether err is a free-space failure.
func IsInsufficientSpaceError(err error) bool {
	var ise *InsufficientSpaceError
	return errors.As(err, &ise)
}

// safetyMargin leaves headroom beyond the announced size; responses can be
// larger than their Content-Length once decompressed.
const safetyMargin = 1.1

// CheckAvailableSpace returns an InsufficientSpaceError when the filesystem
// holding dir cannot fit requiredBytes plus a safety margin. Filesystems
// that cannot report free space (network mounts, virtual filesystems) pass
// the check; the write will fail on its own if space runs out.
func CheckAvailableSpace(dir string, requiredBytes int64) error {
	if requiredBytes <= 0 {
		return nil
	}

	available := availableBytes(dir)
	if available == 0 {
		return nil
	}

	required := int64(float64(requiredBytes) * safetyMargin)
	if available < required {
		return &InsufficientSpaceError{
			Path:           dir,
			RequiredBytes:  required,
			AvailableBytes: available,
		}
	}
	return nil
}
