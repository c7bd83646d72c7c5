// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package validation

import (
	"strings"
	"testing"
)

type testFilterRequest struct {
	DateFrom string `json:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	BBox     string `json:"bbox" validate:"omitempty,bbox"`
	Page     int    `json:"page" validate:"omitempty,min=1,max=1000"`
	Store    string `json:"store" validate:"omitempty,oneof=memory badger"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		req       testFilterRequest
		wantField string
		wantTag   string
	}{
		{"valid", testFilterRequest{DateFrom: "2020-01-01", BBox: "70,15,135,55", Page: 2}, "", ""},
		{"empty optional fields", testFilterRequest{}, "", ""},
		{"bad date", testFilterRequest{DateFrom: "01/02/2020"}, "dateFrom", "datetime"},
		{"bad bbox", testFilterRequest{BBox: "10,0,5,10"}, "bbox", "bbox"},
		{"page too large", testFilterRequest{Page: 5000}, "page", "max"},
		{"bad store", testFilterRequest{Store: "redis"}, "store", "oneof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.req)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			fields := verr.Errors()
			if len(fields) != 1 {
				t.Fatalf("expected 1 field error, got %d", len(fields))
			}
			if fields[0].Field != tt.wantField || fields[0].Tag != tt.wantTag {
				t.Errorf("got field=%s tag=%s", fields[0].Field, fields[0].Tag)
			}
			if !strings.Contains(verr.Error(), tt.wantField) {
				t.Errorf("message %q should name the field", verr.Error())
			}
		})
	}
}

func TestRequestValidationError_Details(t *testing.T) {
	verr := NewRequestValidationError(FieldError{Field: "dateFrom", Tag: "ltefield", Message: "dateFrom must not be after dateTo"})
	details := verr.Details()
	fields, ok := details["fields"].([]FieldError)
	if !ok || len(fields) != 1 {
		t.Fatalf("unexpected details: %#v", details)
	}
	if verr.Error() != "dateFrom must not be after dateTo" {
		t.Errorf("Error() = %q", verr.Error())
	}
}
