// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package tracking

import (
	"context"
	"time"
)

// Activity types.
const (
	ActivitySearch         = "search"
	ActivityMapInteraction = "map_interaction"
)

// Activity is one tracked user action.
type Activity struct {
	UserID       string         `json:"userId"`
	ActivityType string         `json:"activityType"`
	Details      map[string]any `json:"details,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// Preference is one stored user preference.
type Preference struct {
	UserID          string    `json:"userId"`
	PreferenceKey   string    `json:"preferenceKey"`
	PreferenceValue any       `json:"preferenceValue"`
	Timestamp       time.Time `json:"timestamp"`
}

// Sink delivers records somewhere.
type Sink interface {
	Name() string
	SendActivity(ctx context.Context, a *Activity) error
	SendPreference(ctx context.Context, p *Preference) error
	Close() error
}

// record is a queued activity or preference.
type record struct {
	activity   *Activity
	preference *Preference
}

func (r record) kind() string {
	if r.preference != nil {
		return "preference"
	}
	return r.activity.ActivityType
}
