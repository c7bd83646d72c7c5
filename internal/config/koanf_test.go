// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Session.DefaultDateFrom != "2019-04-01" || cfg.Session.DefaultDateTo != "2019-04-30" {
		t.Errorf("default dates = %s..%s", cfg.Session.DefaultDateFrom, cfg.Session.DefaultDateTo)
	}
	if cfg.Session.DefaultBBox != "70,15,135,55" {
		t.Errorf("DefaultBBox = %q", cfg.Session.DefaultBBox)
	}
	if cfg.Upstream.MapSize != 500 || cfg.Upstream.SearchPageSize != 10 {
		t.Errorf("fixed sizes = %d/%d, want 500/10", cfg.Upstream.MapSize, cfg.Upstream.SearchPageSize)
	}
	if cfg.Likes.Store != "badger" {
		t.Errorf("Likes.Store = %q, want badger", cfg.Likes.Store)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"GDELT_API_URL", "upstream.base_url"},
		{"HTTP_PORT", "server.port"},
		{"LIKES_STORE", "likes.store"},
		{"SESSION_MOVEEND_DEBOUNCE", "session.moveend_debounce"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("GDELT_API_URL", "https://api.example.org/prod")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LIKES_STORE", "memory")
	t.Setenv("SESSION_MOVEEND_DEBOUNCE", "150ms")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Upstream.BaseURL != "https://api.example.org/prod" {
		t.Errorf("BaseURL = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Likes.Store != "memory" {
		t.Errorf("Likes.Store = %q, want memory", cfg.Likes.Store)
	}
	if cfg.Session.MoveEndDebounce != 150*time.Millisecond {
		t.Errorf("MoveEndDebounce = %v, want 150ms", cfg.Session.MoveEndDebounce)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanf_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
upstream:
  base_url: https://gdelt.example.com/api
session:
  default_bbox: "-10,-10,10,10"
likes:
  store: memory
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Upstream.BaseURL != "https://gdelt.example.com/api" {
		t.Errorf("BaseURL = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Session.DefaultBBox != "-10,-10,10,10" {
		t.Errorf("DefaultBBox = %q", cfg.Session.DefaultBBox)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"bad upstream scheme", func(c *Config) { c.Upstream.BaseURL = "ftp://x" }, true},
		{"inverted default dates", func(c *Config) { c.Session.DefaultDateFrom = "2020-02-01"; c.Session.DefaultDateTo = "2020-01-01" }, true},
		{"malformed default bbox", func(c *Config) { c.Session.DefaultBBox = "1,2,3" }, true},
		{"unknown likes store", func(c *Config) { c.Likes.Store = "redis" }, true},
		{"badger without path", func(c *Config) { c.Likes.Path = "" }, true},
		{"jwt without secret", func(c *Config) { c.Security.AuthMode = "jwt" }, true},
		{"jwt with secret", func(c *Config) {
			c.Security.AuthMode = "jwt"
			c.Security.JWTSecret = "0123456789abcdef0123456789abcdef"
		}, false},
		{"no auth in production", func(c *Config) { c.Server.Environment = "production" }, true},
		{"bad nats url", func(c *Config) { c.Tracking.NATSURL = "http://nats" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
