// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package session

import (
	"fmt"
	"time"

	"github.com/tomtom215/worldsense/internal/config"
	"github.com/tomtom215/worldsense/internal/fetch"
	"github.com/tomtom215/worldsense/internal/filters"
)

// Config controls session creation and reaping.
type Config struct {
	IdleTTL         time.Duration
	ReapInterval    time.Duration
	MaxSessions     int
	MoveEndDebounce time.Duration
	DefaultState    filters.State
	Fetch           fetch.Options
}

// DefaultConfig returns settings suitable for tests and local use.
func DefaultConfig() Config {
	return Config{
		IdleTTL:         30 * time.Minute,
		ReapInterval:    time.Minute,
		MaxSessions:     1000,
		MoveEndDebounce: 300 * time.Millisecond,
		DefaultState:    filters.DefaultState(),
		Fetch:           fetch.Options{Fixed: fetch.DefaultFixedParams()},
	}
}

// NewConfig derives session settings from the application config.
func NewConfig(cfg *config.Config) (Config, error) {
	st, err := filters.NewState(cfg.Session.DefaultDateFrom, cfg.Session.DefaultDateTo, cfg.Session.DefaultBBox)
	if err != nil {
		return Config{}, fmt.Errorf("default session filters: %w", err)
	}
	out := Config{
		IdleTTL:         cfg.Session.IdleTTL,
		ReapInterval:    cfg.Session.ReapInterval,
		MaxSessions:     cfg.Session.MaxSessions,
		MoveEndDebounce: cfg.Session.MoveEndDebounce,
		DefaultState:    st,
		Fetch: fetch.Options{
			BaseURL: cfg.Upstream.BaseURL,
			Fixed: fetch.FixedParams{
				MapSize:        cfg.Upstream.MapSize,
				SearchPage:     1,
				SearchPageSize: cfg.Upstream.SearchPageSize,
			},
			StaleWhileRevalidate: cfg.Session.StaleWhileRevalidate,
		},
	}
	if out.ReapInterval <= 0 {
		out.ReapInterval = time.Minute
	}
	return out, nil
}

func (c Config) pageSize() int {
	if c.Fetch.Fixed.SearchPageSize < 1 {
		return fetch.DefaultFixedParams().SearchPageSize
	}
	return c.Fetch.Fixed.SearchPageSize
}
