// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/worldsense/config.yaml",
	"/etc/worldsense/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Upstream: UpstreamConfig{
			BaseURL:        "",
			Timeout:        15 * time.Second,
			RetryAttempts:  2,
			RetryDelay:     500 * time.Millisecond,
			RequestsPerSec: 20,
			Burst:          10,
			MapSize:        500,
			SearchPageSize: 10,
			BreakerEnabled: true,
		},
		Session: SessionConfig{
			IdleTTL:         30 * time.Minute,
			ReapInterval:    time.Minute,
			MaxSessions:     1000,
			MoveEndDebounce: 300 * time.Millisecond,
			DefaultDateFrom: "2019-04-01",
			DefaultDateTo:   "2019-04-30",
			DefaultBBox:     "70,15,135,55",
		},
		Likes: LikesConfig{
			Store:      "badger",
			Path:       "/data/worldsense/likes",
			GCInterval: 10 * time.Minute,
		},
		Tracking: TrackingConfig{
			Enabled:      true,
			Subject:      "worldsense.activity",
			QueueSize:    256,
			Timeout:      5 * time.Second,
			FlushTimeout: 5 * time.Second,
		},
		Security: SecurityConfig{
			AuthMode:        "none",
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf layers defaults, an optional YAML file and environment
// variables, then validates the result. Precedence: ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so the process environment cannot pollute config.
var envMappings = map[string]string{
	"http_port":        "server.port",
	"http_host":        "server.host",
	"server_timeout":   "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"gdelt_api_url":             "upstream.base_url",
	"upstream_timeout":          "upstream.timeout",
	"upstream_retry_attempts":   "upstream.retry_attempts",
	"upstream_retry_delay":      "upstream.retry_delay",
	"upstream_requests_per_sec": "upstream.requests_per_sec",
	"upstream_burst":            "upstream.burst",
	"upstream_breaker_enabled":  "upstream.breaker_enabled",

	"session_idle_ttl":               "session.idle_ttl",
	"session_reap_interval":          "session.reap_interval",
	"session_max":                    "session.max_sessions",
	"session_moveend_debounce":       "session.moveend_debounce",
	"session_default_date_from":      "session.default_date_from",
	"session_default_date_to":        "session.default_date_to",
	"session_default_bbox":           "session.default_bbox",
	"session_stale_while_revalidate": "session.stale_while_revalidate",

	"likes_store":       "likes.store",
	"likes_path":        "likes.path",
	"likes_gc_interval": "likes.gc_interval",

	"tracking_enabled":    "tracking.enabled",
	"tracking_api_url":    "tracking.base_url",
	"tracking_nats_url":   "tracking.nats_url",
	"tracking_subject":    "tracking.subject",
	"tracking_queue_size": "tracking.queue_size",
	"tracking_timeout":    "tracking.timeout",

	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf paths.
//
//	GDELT_API_URL -> upstream.base_url
//	LIKES_STORE   -> likes.store
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
