// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/worldsense/internal/models"
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateUpstream(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateLikes(); err != nil {
		return err
	}
	if err := c.validateTracking(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateUpstream() error {
	if c.Upstream.BaseURL != "" {
		if err := validateHTTPURL(c.Upstream.BaseURL); err != nil {
			return fmt.Errorf("GDELT_API_URL: %w", err)
		}
	}
	if c.Upstream.RetryAttempts < 0 || c.Upstream.RetryAttempts > 10 {
		return fmt.Errorf("UPSTREAM_RETRY_ATTEMPTS must be between 0 and 10, got %d", c.Upstream.RetryAttempts)
	}
	if c.Upstream.RequestsPerSec < 0 {
		return fmt.Errorf("UPSTREAM_REQUESTS_PER_SEC must not be negative")
	}
	if c.Upstream.MapSize < 1 || c.Upstream.SearchPageSize < 1 {
		return fmt.Errorf("upstream map_size and search_page_size must be positive")
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.IdleTTL < time.Second {
		return fmt.Errorf("SESSION_IDLE_TTL must be at least 1s, got %v", c.Session.IdleTTL)
	}
	if c.Session.MaxSessions < 1 {
		return fmt.Errorf("SESSION_MAX must be positive, got %d", c.Session.MaxSessions)
	}
	if c.Session.MoveEndDebounce < 0 {
		return fmt.Errorf("SESSION_MOVEEND_DEBOUNCE must not be negative")
	}
	from, err := time.Parse(models.DateLayout, c.Session.DefaultDateFrom)
	if err != nil {
		return fmt.Errorf("SESSION_DEFAULT_DATE_FROM must be YYYY-MM-DD: %w", err)
	}
	to, err := time.Parse(models.DateLayout, c.Session.DefaultDateTo)
	if err != nil {
		return fmt.Errorf("SESSION_DEFAULT_DATE_TO must be YYYY-MM-DD: %w", err)
	}
	if from.After(to) {
		return fmt.Errorf("SESSION_DEFAULT_DATE_FROM must not be after SESSION_DEFAULT_DATE_TO")
	}
	if _, err := models.ParseBBox(c.Session.DefaultBBox); err != nil {
		return fmt.Errorf("SESSION_DEFAULT_BBOX: %w", err)
	}
	return nil
}

func (c *Config) validateLikes() error {
	switch c.Likes.Store {
	case "memory":
		return nil
	case "badger":
		if c.Likes.Path == "" {
			return fmt.Errorf("LIKES_PATH is required when LIKES_STORE=badger")
		}
		return nil
	default:
		return fmt.Errorf("LIKES_STORE must be memory or badger, got %q", c.Likes.Store)
	}
}

func (c *Config) validateTracking() error {
	if !c.Tracking.Enabled {
		return nil
	}
	if c.Tracking.BaseURL != "" {
		if err := validateHTTPURL(c.Tracking.BaseURL); err != nil {
			return fmt.Errorf("TRACKING_API_URL: %w", err)
		}
	}
	if c.Tracking.NATSURL != "" && !strings.HasPrefix(c.Tracking.NATSURL, "nats://") && !strings.HasPrefix(c.Tracking.NATSURL, "tls://") {
		return fmt.Errorf("TRACKING_NATS_URL must use nats:// or tls://, got %q", c.Tracking.NATSURL)
	}
	if c.Tracking.QueueSize < 1 {
		return fmt.Errorf("TRACKING_QUEUE_SIZE must be positive, got %d", c.Tracking.QueueSize)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "none":
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
	case "jwt":
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be none or jwt, got %q", c.Security.AuthMode)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow < time.Second {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s, got %v", c.Security.RateLimitWindow)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}
