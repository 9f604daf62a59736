package config

import (
	"os"
	"path/filepath"
	"strings"
)

// APIKeyEnvVar is the environment variable checked for the API key.
const APIKeyEnvVar = "WALLHAVEN_API_KEY"

// ResolveAPIKey returns an API key by checking multiple sources in priority
// order:
//
//  1. Provided apiKey parameter (if non-empty) - e.g. from the --api-key flag
//  2. Token file (~/.config/whcollect/token) - created by 'config init'
//  3. Config file (~/.config/whcollect/config) api_key entry
//  4. WALLHAVEN_API_KEY environment variable
//
// Returns empty string if no key is found; the wallhaven API serves public
// collections without one.
func ResolveAPIKey(apiKey string) string {
	key, _ := ResolveAPIKeySource(apiKey)
	return key
}

// ResolveAPIKeySource returns the API key and where it came from ("flag",
// "token-file", "config-file", "environment", or "" if not found). Used by
// verbose mode to show the key's origin.
func ResolveAPIKeySource(apiKey string) (string, string) {
	if apiKey != "" {
		return apiKey, "flag"
	}

	if tokenPath, err := DefaultTokenPath(); err == nil {
		if key, err := ReadTokenFile(tokenPath); err == nil && key != "" {
			return key, "token-file"
		}
	}

	if cfgPath, err := DefaultFilePath(); err == nil {
		if fc, err := LoadFile(cfgPath); err == nil && fc.APIKey != "" {
			return fc.APIKey, "config-file"
		}
	}

	if key := os.Getenv(APIKeyEnvVar); key != "" {
		return key, "environment"
	}

	return "", ""
}

// DefaultTokenPath returns ~/.config/whcollect/token.
func DefaultTokenPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "token"), nil
}

// ReadTokenFile reads an API key from a file, trimming surrounding
// whitespace and trailing newlines.
func ReadTokenFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteTokenFile stores an API key with owner-only permissions, creating the
// config directory if needed.
func WriteTokenFile(path, key string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(key+"\n"), 0600)
}
