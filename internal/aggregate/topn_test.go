// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package aggregate

import (
	"reflect"
	"testing"
)

func TestTopN(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		n      int
		want   []Count
	}{
		{
			name:   "empty",
			values: nil,
			n:      3,
			want:   []Count{},
		},
		{
			name:   "count then value order",
			values: []string{"US", "CN", "US", "RU", "CN", "IN"},
			n:      8,
			want:   []Count{{"CN", 2}, {"US", 2}, {"IN", 1}, {"RU", 1}},
		},
		{
			name:   "truncated without other bucket",
			values: []string{"a", "b", "b", "c", "c", "c"},
			n:      2,
			want:   []Count{{"c", 3}, {"b", 2}},
		},
		{
			name:   "non-positive n uses default",
			values: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
			n:      0,
			want:   []Count{{"a", 1}, {"b", 1}, {"c", 1}, {"d", 1}, {"e", 1}, {"f", 1}, {"g", 1}, {"h", 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopN(tt.values, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TopN() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLabels(t *testing.T) {
	if got := CountryLabel("  "); got != UnknownCountry {
		t.Errorf("CountryLabel(blank) = %q", got)
	}
	if got := CountryLabel("CN"); got != "CN" {
		t.Errorf("CountryLabel(CN) = %q", got)
	}
	if got := ThemeLabel(" HEALTH "); got != "HEALTH" {
		t.Errorf("ThemeLabel() = %q, want trimmed", got)
	}
	if got := ThemeLabel(""); got != GeneralTheme {
		t.Errorf("ThemeLabel(empty) = %q", got)
	}
	if got := CountryName("GB"); got != "United Kingdom" {
		t.Errorf("CountryName(GB) = %q", got)
	}
	if got := CountryName("ZZ"); got != "ZZ" {
		t.Errorf("CountryName(ZZ) = %q", got)
	}
	if got := CountryName(""); got != UnknownCountry {
		t.Errorf("CountryName(empty) = %q", got)
	}
}

func TestThemeHeatmap(t *testing.T) {
	var themes []string
	for i := 0; i < 51; i++ {
		themes = append(themes, "PROTEST")
	}
	for i := 0; i < 21; i++ {
		themes = append(themes, " HEALTH")
	}
	themes = append(themes, "", "ENV_CLIMATE")

	got := ThemeHeatmap(themes, 8)
	want := []ThemeHeat{
		{Theme: "PROTEST", Heat: 51, Intensity: IntensityHigh},
		{Theme: "HEALTH", Heat: 21, Intensity: IntensityMedium},
		{Theme: "ENV_CLIMATE", Heat: 1, Intensity: IntensityLow},
		{Theme: GeneralTheme, Heat: 1, Intensity: IntensityLow},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ThemeHeatmap() = %+v, want %+v", got, want)
	}
}

func TestThemeIntensityBoundaries(t *testing.T) {
	tests := map[int]Intensity{0: IntensityLow, 20: IntensityLow, 21: IntensityMedium, 50: IntensityMedium, 51: IntensityHigh}
	for n, want := range tests {
		if got := ThemeIntensity(n); got != want {
			t.Errorf("ThemeIntensity(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestCountries(t *testing.T) {
	list := Countries()
	if len(list) < 200 {
		t.Fatalf("Countries() returned %d entries", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name > list[i].Name {
			t.Fatalf("not sorted at %d: %q > %q", i, list[i-1].Name, list[i].Name)
		}
	}
}
