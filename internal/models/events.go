// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package models

import "github.com/goccy/go-json"

// GeoJSONGeometry is a GeoJSON point geometry. Coordinates are [lon, lat].
type GeoJSONGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// EventProperties are the per-feature properties returned by /map.
type EventProperties struct {
	EventID    string  `json:"event_id,omitempty"`
	Country    string  `json:"country,omitempty"`
	Actor1     string  `json:"actor1,omitempty"`
	Actor2     string  `json:"actor2,omitempty"`
	Theme      string  `json:"theme,omitempty"`
	ThemeName  string  `json:"theme_name,omitempty"`
	Tone       float64 `json:"tone"`
	Timestamp  string  `json:"timestamp,omitempty"`
	URL        string  `json:"url,omitempty"`
	SourceFile string  `json:"source_file,omitempty"`
	Lang       string  `json:"lang,omitempty"`
}

// GeoJSONFeature is a single event on the map.
type GeoJSONFeature struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id,omitempty"`
	Geometry   GeoJSONGeometry `json:"geometry"`
	Properties EventProperties `json:"properties"`
}

// Lon returns the feature longitude, or 0 without coordinates.
func (f *GeoJSONFeature) Lon() float64 {
	if len(f.Geometry.Coordinates) < 2 {
		return 0
	}
	return f.Geometry.Coordinates[0]
}

// Lat returns the feature latitude, or 0 without coordinates.
func (f *GeoJSONFeature) Lat() float64 {
	if len(f.Geometry.Coordinates) < 2 {
		return 0
	}
	return f.Geometry.Coordinates[1]
}

// FeatureCollection is the /map response body.
type FeatureCollection struct {
	Type     string           `json:"type"`
	Features []GeoJSONFeature `json:"features"`
}

// SeriesPoint is one day of the /stats series.
type SeriesPoint struct {
	Date    string   `json:"date"`
	Count   int64    `json:"count"`
	ToneAvg *float64 `json:"tone_avg,omitempty"`
}

// StatsResponse is the /stats response body.
type StatsResponse struct {
	Series []SeriesPoint `json:"series"`
}

// SearchItem is one /search hit.
type SearchItem struct {
	EventID    string  `json:"event_id,omitempty"`
	Country    string  `json:"country,omitempty"`
	Actor1     string  `json:"actor1,omitempty"`
	Actor2     string  `json:"actor2,omitempty"`
	Theme      string  `json:"theme,omitempty"`
	Tone       float64 `json:"tone"`
	URL        string  `json:"url,omitempty"`
	SourceFile string  `json:"source_file,omitempty"`
	Timestamp  string  `json:"@timestamp,omitempty"`
}

// UnmarshalJSON accepts both flat items and search-engine hits that nest the
// document under "_source".
func (s *SearchItem) UnmarshalJSON(data []byte) error {
	type plain SearchItem
	var wrapped struct {
		Source *plain `json:"_source"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.Source != nil {
		*s = SearchItem(*wrapped.Source)
		return nil
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = SearchItem(p)
	return nil
}

// SearchResponse is the /search response body.
type SearchResponse struct {
	Total int64        `json:"total"`
	Items []SearchItem `json:"items"`
}
