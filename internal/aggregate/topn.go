// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package aggregate

import (
	"sort"
	"strings"
)

// DefaultTopN is the number of slices shown by the country and theme charts.
const DefaultTopN = 8

// Fallback labels for missing categorical values.
const (
	UnknownCountry = "Unknown"
	GeneralTheme   = "General"
)

// Theme intensity thresholds.
const (
	IntensityHighAbove   = 50
	IntensityMediumAbove = 20
)

// Count is one group of a top-N chart.
type Count struct {
	Value string `json:"name"`
	Count int    `json:"value"`
}

// TopN counts occurrences of each value and returns the n most frequent,
// ordered by count descending then value ascending. n <= 0 uses DefaultTopN.
func TopN(values []string, n int) []Count {
	if n <= 0 {
		n = DefaultTopN
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	out := make([]Count, 0, len(counts))
	for v, c := range counts {
		out = append(out, Count{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// CountryLabel returns the country value used for grouping.
func CountryLabel(country string) string {
	if country = strings.TrimSpace(country); country == "" {
		return UnknownCountry
	}
	return country
}

// ThemeLabel trims a theme and falls back to GeneralTheme.
func ThemeLabel(theme string) string {
	if theme = strings.TrimSpace(theme); theme == "" {
		return GeneralTheme
	}
	return theme
}

// Intensity classifies a theme count for the heat chart.
type Intensity string

const (
	IntensityHigh   Intensity = "High"
	IntensityMedium Intensity = "Medium"
	IntensityLow    Intensity = "Low"
)

// ThemeIntensity classifies how often a theme occurred.
func ThemeIntensity(count int) Intensity {
	switch {
	case count > IntensityHighAbove:
		return IntensityHigh
	case count > IntensityMediumAbove:
		return IntensityMedium
	default:
		return IntensityLow
	}
}

// ThemeHeat is one bar of the theme heat chart.
type ThemeHeat struct {
	Theme     string    `json:"theme"`
	Heat      int       `json:"heat"`
	Intensity Intensity `json:"intensity"`
}

// ThemeHeatmap groups themes with TopN and classifies each group.
func ThemeHeatmap(themes []string, n int) []ThemeHeat {
	labels := make([]string, len(themes))
	for i, t := range themes {
		labels[i] = ThemeLabel(t)
	}
	top := TopN(labels, n)
	out := make([]ThemeHeat, len(top))
	for i, c := range top {
		out[i] = ThemeHeat{Theme: c.Value, Heat: c.Count, Intensity: ThemeIntensity(c.Count)}
	}
	return out
}
