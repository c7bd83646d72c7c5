// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

// Package config loads WorldSense configuration from defaults, an optional
// YAML file and environment variables (in increasing priority) using koanf.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Session  SessionConfig  `koanf:"session"`
	Likes    LikesConfig    `koanf:"likes"`
	Tracking TrackingConfig `koanf:"tracking"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// UpstreamConfig describes the GDELT REST API serving /map, /stats and /search.
type UpstreamConfig struct {
	BaseURL        string        `koanf:"base_url"`
	Timeout        time.Duration `koanf:"timeout"`
	RetryAttempts  int           `koanf:"retry_attempts"`
	RetryDelay     time.Duration `koanf:"retry_delay"`
	RequestsPerSec float64       `koanf:"requests_per_sec"`
	Burst          int           `koanf:"burst"`
	MapSize        int           `koanf:"map_size"`
	SearchPageSize int           `koanf:"search_page_size"`
	// BreakerEnabled wraps upstream calls in a circuit breaker.
	BreakerEnabled bool `koanf:"breaker_enabled"`
}

// SessionConfig controls dashboard sessions.
type SessionConfig struct {
	IdleTTL         time.Duration `koanf:"idle_ttl"`
	ReapInterval    time.Duration `koanf:"reap_interval"`
	MaxSessions     int           `koanf:"max_sessions"`
	MoveEndDebounce time.Duration `koanf:"moveend_debounce"`
	DefaultDateFrom string        `koanf:"default_date_from"`
	DefaultDateTo   string        `koanf:"default_date_to"`
	DefaultBBox     string        `koanf:"default_bbox"`
	// StaleWhileRevalidate keeps the last data while a panel reloads or fails.
	StaleWhileRevalidate bool `koanf:"stale_while_revalidate"`
}

// LikesConfig selects the liked-events store.
type LikesConfig struct {
	Store      string        `koanf:"store"` // memory or badger
	Path       string        `koanf:"path"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// TrackingConfig controls best-effort activity tracking.
type TrackingConfig struct {
	Enabled      bool          `koanf:"enabled"`
	BaseURL      string        `koanf:"base_url"`
	NATSURL      string        `koanf:"nats_url"`
	Subject      string        `koanf:"subject"`
	QueueSize    int           `koanf:"queue_size"`
	Timeout      time.Duration `koanf:"timeout"`
	FlushTimeout time.Duration `koanf:"flush_timeout"`
}

// SecurityConfig holds authentication, CORS and rate limiting settings.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // none or jwt
	JWTSecret         string        `koanf:"jwt_secret"`
	JWTIssuer         string        `koanf:"jwt_issuer"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig mirrors logging.Config for file and env loading.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration with the layered koanf loader.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production" || c.Server.Environment == "prod"
}
