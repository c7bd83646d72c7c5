// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name                  string
		page, pageSize        int
		total                 int64
		wantPage, wantPages   int
		wantOffset            int
		wantHasNext, wantPrev bool
	}{
		{"first of five", 1, 10, 45, 1, 5, 0, true, false},
		{"middle", 3, 10, 45, 3, 5, 20, true, true},
		{"past the end clamps", 9, 10, 45, 5, 5, 40, false, true},
		{"zero page clamps", 0, 10, 45, 1, 5, 0, true, false},
		{"no results", 4, 10, 0, 1, 1, 0, false, false},
		{"exact multiple", 2, 10, 20, 2, 2, 10, false, true},
		{"zero page size", 1, 0, 3, 1, 3, 0, true, false},
		{"partial last page", 3, 10, 25, 3, 3, 20, false, true},
		{"negative total", 2, 10, -5, 1, 1, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.pageSize, tt.total)
			if p.Page != tt.wantPage || p.TotalPages != tt.wantPages || p.Offset != tt.wantOffset {
				t.Errorf("got page %d/%d offset %d, want %d/%d offset %d",
					p.Page, p.TotalPages, p.Offset, tt.wantPage, tt.wantPages, tt.wantOffset)
			}
			if p.HasNext != tt.wantHasNext || p.HasPrev != tt.wantPrev {
				t.Errorf("HasNext=%v HasPrev=%v", p.HasNext, p.HasPrev)
			}
		})
	}
}

func TestSearchItem_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"flat", `{"country":"FR","theme":"ECON","tone":-1.5}`},
		{"search hit", `{"_id":"x","_source":{"country":"FR","theme":"ECON","tone":-1.5}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item SearchItem
			if err := json.Unmarshal([]byte(tt.raw), &item); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if item.Country != "FR" || item.Theme != "ECON" || item.Tone != -1.5 {
				t.Errorf("item = %+v", item)
			}
		})
	}
}
