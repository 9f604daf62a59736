//go:build !windows
// +build !windows

package progress

import "os"

// enableWindowsANSI is a no-op on non-Windows platforms; Unix terminals
// support ANSI natively.
func enableWindowsANSI(f *os.File) {
}
