// Package pathutil provides path resolution helpers shared by the CLI and
// the download pipeline.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveDestination converts a user-supplied destination into an absolute
// path. An empty path resolves to the current working directory and a
// leading ~ expands to the home directory.
func ResolveDestination(path string) (string, error) {
	if path == "" {
		return os.Getwd()
	}

	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = home + path[1:]
	}

	return filepath.Abs(path)
}

// SafeLabel turns a collection label into a single directory name. Path
// separators and other characters that are unsafe in file names on common
// filesystems are replaced with underscores, so a label can never escape
// its parent directory or collide with reserved syntax.
func SafeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" || label == "." || label == ".." {
		return "_"
	}

	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			b.WriteRune('_')
		default:
			if r < 0x20 {
				b.WriteRune('_')
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
