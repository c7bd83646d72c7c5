// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package filters

import (
	"reflect"
	"testing"
)

func TestBuildQueryString(t *testing.T) {
	tests := []struct {
		name string
		in   Clauses
		want string
	}{
		{"all empty", Clauses{}, ""},
		{"type without value", Clauses{SearchType: "theme"}, ""},
		{"theme and country", Clauses{SearchType: "theme", SearchValue: "HEALTH", Country: "CN", Actor: ""}, "theme:HEALTH AND country:CN"},
		{"all three", Clauses{SearchType: "source", SearchValue: "bbc.co.uk", Country: "GB", Actor: "POLICE"}, "source:bbc.co.uk AND country:GB AND actor:POLICE"},
		{"actor only", Clauses{Actor: "UN"}, "actor:UN"},
		{"whitespace is empty", Clauses{SearchType: "theme", SearchValue: "   ", Country: " "}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildQueryString(tt.in)
			if got != tt.want {
				t.Errorf("BuildQueryString() = %q, want %q", got, tt.want)
			}
			if again := BuildQueryString(tt.in); again != got {
				t.Errorf("BuildQueryString() not deterministic: %q vs %q", got, again)
			}
		})
	}
}

func TestParseQuery(t *testing.T) {
	got := ParseQuery("Theme:HEALTH AND nonsense AND source:http://x.org/a AND mood:happy AND actor:")
	want := []Clause{{Field: "theme", Value: "HEALTH"}, {Field: "source", Value: "http://x.org/a"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseQuery() = %+v, want %+v", got, want)
	}
	if ParseQuery("   ") != nil {
		t.Error("blank query should parse to nil")
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := map[string]string{
		"":                            "",
		"garbage":                     "",
		"theme:HEALTH":                "theme:HEALTH",
		" country:CN  AND  actor:UN ": "country:CN AND actor:UN",
		"theme:HEALTH AND AND x:y":    "theme:HEALTH",
		"theme:HEALTH and country:CN": "theme:HEALTH and country:CN",
		"THEME:ENV_CLIMATE AND x:y":   "theme:ENV_CLIMATE",
		"country:CN AND country:US":   "country:CN AND country:US",
	}
	for in, want := range tests {
		if got := NormalizeQuery(in); got != want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", in, got, want)
		}
	}
}
