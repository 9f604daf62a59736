package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// FileConfig is the persisted configuration at ~/.config/whcollect/config.
//
// INI format:
//
//	[wallhaven]
//	api_url = https://wallhaven.cc/api/v1
//	api_key = <token>
//	key_in_query = false
//
//	[download]
//	destination = /home/me/wallpapers
//	flat = false
//	workers = 4
type FileConfig struct {
	// Wallhaven connection settings
	APIURL     string `ini:"api_url"`
	APIKey     string `ini:"api_key"`
	KeyInQuery bool   `ini:"key_in_query"`

	// Download settings
	Download DownloadSection
}

// DownloadSection contains the local-side defaults.
type DownloadSection struct {
	Destination string `ini:"destination"`
	Flat        bool   `ini:"flat"`
	Workers     int    `ini:"workers"`
}

// DefaultFilePath returns the default path for the config file.
func DefaultFilePath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config"), nil
}

// LoadFile reads and parses the INI config file at path.
func LoadFile(path string) (*FileConfig, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	fc := &FileConfig{}
	if err := f.Section("wallhaven").MapTo(fc); err != nil {
		return nil, fmt.Errorf("failed to parse [wallhaven] section: %w", err)
	}
	if err := f.Section("download").MapTo(&fc.Download); err != nil {
		return nil, fmt.Errorf("failed to parse [download] section: %w", err)
	}

	return fc, nil
}

// SaveFile writes the INI config file at path, creating the directory if
// needed. The file may contain an API key, so it gets owner-only permissions.
func SaveFile(path string, fc *FileConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f := ini.Empty()
	if err := f.Section("wallhaven").ReflectFrom(fc); err != nil {
		return fmt.Errorf("failed to encode [wallhaven] section: %w", err)
	}
	if err := f.Section("download").ReflectFrom(&fc.Download); err != nil {
		return fmt.Errorf("failed to encode [download] section: %w", err)
	}

	if err := f.SaveTo(path); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return os.Chmod(path, 0600)
}

// Apply fills unset fields of c from the file values. Flags win over file
// entries, so only zero values are overwritten.
func (fc *FileConfig) Apply(c *Config) {
	if c.APIBaseURL == "" || c.APIBaseURL == DefaultAPIBaseURL {
		if fc.APIURL != "" {
			c.APIBaseURL = fc.APIURL
		}
	}
	if c.APIKey == "" {
		c.APIKey = fc.APIKey
	}
	if fc.KeyInQuery {
		c.KeyInQuery = true
	}
	if fc.Download.Destination != "" && c.SaveDir == "" {
		c.SaveDir = fc.Download.Destination
	}
	if fc.Download.Flat {
		c.Flat = true
	}
	if fc.Download.Workers > 0 && c.Workers == DefaultWorkers {
		c.Workers = fc.Download.Workers
	}
}
