package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// TestFileConfig_RoundTrip verifies save then load preserves every field and
// the file gets owner-only permissions.
func TestFileConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config")

	in := &FileConfig{
		APIURL:     "https://example.com/api/v1",
		APIKey:     "secret",
		KeyInQuery: true,
		Download: DownloadSection{
			Destination: "/data/wallpapers",
			Flat:        true,
			Workers:     8,
		},
	}
	if err := SaveFile(path, in); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode %o, want 0600", perm)
	}

	out, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *out != *in {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

// TestLoadFile_Missing verifies a missing file is an error the caller can
// choose to ignore.
func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

// TestApply_FillsUnsetFields verifies file values land only where flags left
// zero values.
func TestApply_FillsUnsetFields(t *testing.T) {
	fc := &FileConfig{
		APIURL:     "https://example.com/api/v1",
		APIKey:     "from-file",
		KeyInQuery: true,
		Download: DownloadSection{
			Destination: "/data/wallpapers",
			Flat:        true,
			Workers:     8,
		},
	}

	cfg := Default()
	fc.Apply(cfg)

	if cfg.APIBaseURL != "https://example.com/api/v1" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APIKey != "from-file" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if !cfg.KeyInQuery {
		t.Error("KeyInQuery not applied")
	}
	if cfg.SaveDir != "/data/wallpapers" {
		t.Errorf("SaveDir = %q", cfg.SaveDir)
	}
	if !cfg.Flat {
		t.Error("Flat not applied")
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
}

// TestApply_FlagsWin verifies explicitly set values survive the merge.
func TestApply_FlagsWin(t *testing.T) {
	fc := &FileConfig{
		APIURL: "https://file.example.com",
		APIKey: "from-file",
		Download: DownloadSection{
			Destination: "/file/dest",
			Workers:     8,
		},
	}

	cfg := Default()
	cfg.APIBaseURL = "https://flag.example.com"
	cfg.APIKey = "from-flag"
	cfg.SaveDir = "/flag/dest"
	cfg.Workers = 16

	fc.Apply(cfg)

	if cfg.APIBaseURL != "https://flag.example.com" {
		t.Errorf("APIBaseURL = %q, flag value should win", cfg.APIBaseURL)
	}
	if cfg.APIKey != "from-flag" {
		t.Errorf("APIKey = %q, flag value should win", cfg.APIKey)
	}
	if cfg.SaveDir != "/flag/dest" {
		t.Errorf("SaveDir = %q, flag value should win", cfg.SaveDir)
	}
	if cfg.Workers != 16 {
		t.Errorf("Workers = %d, flag value should win", cfg.Workers)
	}
}

// TestApply_EmptyFileIsNoOp verifies a zero FileConfig changes nothing.
func TestApply_EmptyFileIsNoOp(t *testing.T) {
	cfg := Default()
	want := *cfg
	(&FileConfig{}).Apply(cfg)
	if !reflect.DeepEqual(*cfg, want) {
		t.Errorf("empty file changed config:\n got %+v\nwant %+v", cfg, want)
	}
}
