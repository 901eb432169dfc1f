// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for hanu.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location (in order of precedence):
//   - path passed explicitly (--config)
//   - ~/.hanu/config.toml
//   - built-in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/hanuai/hanu-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete hanu configuration.
type Config struct {
	Version string `toml:"version"`

	// Backend configuration (chat/task endpoint)
	Backend BackendConfig `toml:"backend"`

	// Storage configuration (document store)
	Storage StorageConfig `toml:"storage"`

	// Upload configuration (object storage)
	Upload UploadConfig `toml:"upload"`

	// Admin configuration (impersonation allow-list)
	Admin AdminConfig `toml:"admin"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// BackendConfig describes the agent backend the client talks to.
type BackendConfig struct {
	// BaseURL is the base URL of the chat/task backend.
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
	// MaxRetries is the retry budget for idempotent state fetches.
	MaxRetries int `toml:"max_retries"`
	// RequestsPerMinute caps outgoing requests per acting user (0 = no cap).
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// StorageConfig describes the local document store.
type StorageConfig struct {
	// DatabasePath is the SQLite database file (empty = ~/.hanu/hanu.db).
	DatabasePath string `toml:"database_path"`
}

// UploadConfig describes the object-storage upload collaborator.
type UploadConfig struct {
	// Endpoint accepts HTTP PUTs of file bodies.
	Endpoint string `toml:"endpoint"`
	// PublicBaseURL is the prefix of publicly fetchable object URLs.
	PublicBaseURL string `toml:"public_base_url"`
	// HostPattern marks URLs as hosted files when present in the URL.
	HostPattern string `toml:"host_pattern"`
}

// AdminConfig holds the privileged-user allow-list.
type AdminConfig struct {
	// Users are user IDs allowed to impersonate other users.
	Users []string `toml:"users"`
	// RequireTOTP gates admin sign-in behind a TOTP second factor.
	RequireTOTP bool `toml:"require_totp"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Theme is "dark", "light" or "auto".
	Theme string `toml:"theme"`
	// WelcomeText overrides the synthetic welcome message (empty = default).
	WelcomeText string `toml:"welcome_text"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultConfig returns the built-in default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Backend: BackendConfig{
			BaseURL:           "http://127.0.0.1:8080",
			TimeoutSecs:       60,
			MaxRetries:        3,
			RequestsPerMinute: 30,
		},
		Storage: StorageConfig{},
		Upload: UploadConfig{
			HostPattern: "s3.amazonaws.com",
		},
		Admin: AdminConfig{},
		UI: UIConfig{
			Theme: "auto",
		},
	}
}

// DefaultPath returns the default config file path (~/.hanu/config.toml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".hanu", "config.toml"), nil
}

// DefaultDatabasePath returns the default SQLite path (~/.hanu/hanu.db).
func DefaultDatabasePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".hanu", "hanu.db"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from the default location, applying environment
// overrides. A missing file is not an error; defaults are returned.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from an explicit path, applying environment
// overrides. A missing file yields defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies HANU_* environment variables on top of the
// loaded file. Only the handful of operationally useful knobs are exposed.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("HANU_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("HANU_DATABASE_PATH"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("HANU_UPLOAD_ENDPOINT"); v != "" {
		c.Upload.Endpoint = v
	}
	if v := os.Getenv("HANU_ADMIN_USERS"); v != "" {
		c.Admin.Users = splitList(v)
	}
	if v := os.Getenv("HANU_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Backend.TimeoutSecs = n
		}
	}
	if v := os.Getenv("HANU_THEME"); v != "" {
		c.UI.Theme = v
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for nonsensical values.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url must not be empty")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("backend.base_url %q is not a valid http(s) URL", c.Backend.BaseURL)
	}
	if c.Backend.TimeoutSecs <= 0 {
		return errors.New("backend.timeout_secs must be positive")
	}
	if c.Backend.MaxRetries < 0 {
		return errors.New("backend.max_retries must not be negative")
	}
	if c.Backend.RequestsPerMinute < 0 {
		return errors.New("backend.requests_per_minute must not be negative")
	}
	switch c.UI.Theme {
	case "", "auto", "dark", "light":
	default:
		return fmt.Errorf("ui.theme %q is not one of auto, dark, light", c.UI.Theme)
	}
	return nil
}

// IsAdmin reports whether the given user ID is on the allow-list.
func (c *Config) IsAdmin(userID string) bool {
	for _, u := range c.Admin.Users {
		if u == userID {
			return true
		}
	}
	return false
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to path atomically.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
