// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package models

import "time"

// LikedEvent is an event a signed-in user marked as liked.
type LikedEvent struct {
	Key       string    `json:"key"`
	EventID   string    `json:"event_id"`
	Tone      float64   `json:"tone"`
	Lon       float64   `json:"lon"`
	Lat       float64   `json:"lat"`
	Country   string    `json:"country,omitempty"`
	Theme     string    `json:"theme,omitempty"`
	URL       string    `json:"url,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
	LikedAt   time.Time `json:"liked_at"`
}
