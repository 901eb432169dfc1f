// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Backend.BaseURL != "http://127.0.0.1:8080" {
		t.Errorf("default BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutSecs != 60 {
		t.Errorf("default TimeoutSecs = %d, want 60", cfg.Backend.TimeoutSecs)
	}
	if cfg.Upload.HostPattern != "s3.amazonaws.com" {
		t.Errorf("default HostPattern = %q", cfg.Upload.HostPattern)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should yield defaults, got %v", err)
	}
	if cfg.Backend.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.Backend.MaxRetries)
	}
}

func TestLoadFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
version = "1"

[backend]
base_url = "https://api.example.com"
timeout_secs = 30
max_retries = 1
requests_per_minute = 10

[admin]
users = ["admin1", "admin2"]
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Backend.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if !cfg.IsAdmin("admin1") || !cfg.IsAdmin("admin2") {
		t.Error("allow-listed users must be admin")
	}
	if cfg.IsAdmin("u1") {
		t.Error("u1 must not be admin")
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("[backend]\nbase_url = \"not a url\"\n"), 0600)

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected validation error for bad base_url")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HANU_BACKEND_URL", "http://localhost:9999")
	t.Setenv("HANU_ADMIN_USERS", "a1, a2 ,")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Backend.BaseURL != "http://localhost:9999" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if len(cfg.Admin.Users) != 2 || cfg.Admin.Users[0] != "a1" || cfg.Admin.Users[1] != "a2" {
		t.Errorf("Admin.Users = %v", cfg.Admin.Users)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Admin.Users = []string{"admin1"}
	cfg.UI.Theme = "dark"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.UI.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", loaded.UI.Theme)
	}
	if !loaded.IsAdmin("admin1") {
		t.Error("admin1 lost in round trip")
	}
}
