package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestResolveDestination_Empty verifies the working directory fallback.
func TestResolveDestination_Empty(t *testing.T) {
	got, err := ResolveDestination("")
	if err != nil {
		t.Fatalf("expected nil error, got: %v", err)
	}
	wd, _ := os.Getwd()
	if got != wd {
		t.Errorf("got %q, want working directory %q", got, wd)
	}
}

// TestResolveDestination_TildeExpansion verifies ~ expands to the home
// directory.
func TestResolveDestination_TildeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ResolveDestination("~/wallpapers")
	if err != nil {
		t.Fatalf("expected nil error, got: %v", err)
	}
	if want := filepath.Join(home, "wallpapers"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// TestResolveDestination_RelativeBecomesAbsolute verifies relative inputs
// resolve against the working directory.
func TestResolveDestination_RelativeBecomesAbsolute(t *testing.T) {
	got, err := ResolveDestination("walls")
	if err != nil {
		t.Fatalf("expected nil error, got: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %q", got)
	}
	if filepath.Base(got) != "walls" {
		t.Errorf("expected final segment walls, got %q", got)
	}
}

// TestSafeLabel verifies separator and control characters cannot survive
// into a directory name.
func TestSafeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"favorites", "favorites"},
		{"dark/moody", "dark_moody"},
		{`win\path`, "win_path"},
		{"a:b*c?d", "a_b_c_d"},
		{"  spaced  ", "spaced"},
		{"", "_"},
		{".", "_"},
		{"..", "_"},
		{"tab\there", "tab_here"},
	}

	for _, tt := range tests {
		if got := SafeLabel(tt.in); got != tt.want {
			t.Errorf("SafeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
