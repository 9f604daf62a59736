// Package config provides configuration management for whcollect.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// ConfigDir is the directory name under ~/.config holding the config and
// token files.
const ConfigDir = "whcollect"

// Defaults.
const (
	DefaultAPIBaseURL     = "https://wallhaven.cc/api/v1"
	DefaultWorkers        = 4
	DefaultMaxAttempts    = 8
	DefaultRequestTimeout = 90 * time.Second
	MaxWorkers            = 32
)

// Validation errors.
var (
	ErrMissingUsername    = errors.New("username is required")
	ErrMissingCollections = errors.New("at least one collection id or label is required")
	ErrInvalidWorkers     = fmt.Errorf("workers must be between 1 and %d", MaxWorkers)
	ErrInvalidMaxAttempts = errors.New("max attempts must be at least 1")
	ErrInvalidTimeout     = errors.New("request timeout must be positive")
)

// Config holds the settings for one run.
type Config struct {
	// Who and what to download
	Username    string
	Collections []string

	// Remote API
	APIBaseURL string
	APIKey     string
	// KeyInQuery sends the API key as the apikey query parameter instead of
	// the X-API-Key header.
	KeyInQuery bool
	// ExtraQuery is merged into every listing request.
	ExtraQuery url.Values

	// Local side
	SaveDir string
	// Flat suppresses per-collection subdirectories under SaveDir.
	Flat bool

	// Tuning
	Workers        int
	MaxAttempts    int
	RequestTimeout time.Duration
}

// Default returns a Config with every tunable at its default. SaveDir is
// left empty; callers fall back to the current working directory after
// merging file and flag values.
func Default() *Config {
	return &Config{
		APIBaseURL:     DefaultAPIBaseURL,
		Workers:        DefaultWorkers,
		MaxAttempts:    DefaultMaxAttempts,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// Validate fails fast, before any network activity.
func (c *Config) Validate() error {
	if c.Username == "" {
		return ErrMissingUsername
	}
	if len(c.Collections) == 0 {
		return ErrMissingCollections
	}
	if c.Workers < 1 || c.Workers > MaxWorkers {
		return ErrInvalidWorkers
	}
	if c.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.SaveDir == "" {
		return errors.New("destination directory is required")
	}
	return validateSaveDir(c.SaveDir)
}

// validateSaveDir requires an existing, writable directory. Files in it may
// be overwritten by downloads, so it is never created implicitly.
func validateSaveDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("destination %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("destination %s is not a directory", dir)
	}

	probe, err := os.CreateTemp(dir, ".whcollect-probe-*")
	if err != nil {
		return fmt.Errorf("destination %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// DefaultConfigDir returns ~/.config/whcollect.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", ConfigDir), nil
}
