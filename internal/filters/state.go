// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package filters

import (
	"fmt"
	"time"

	"github.com/tomtom215/worldsense/internal/models"
)

// Default filter values used when a session starts.
const (
	DefaultDateFrom = "2019-04-01"
	DefaultDateTo   = "2019-04-30"
	DefaultBBox     = "70,15,135,55"
)

// State is a snapshot of the filter parameters.
type State struct {
	DateFrom string      `json:"dateFrom"`
	DateTo   string      `json:"dateTo"`
	BBox     models.BBox `json:"bbox"`
	Query    string      `json:"q"`
	ToneMin  *float64    `json:"toneMin,omitempty"`
	ToneMax  *float64    `json:"toneMax,omitempty"`
}

// DefaultState returns the startup filter state.
func DefaultState() State {
	bbox, _ := models.ParseBBox(DefaultBBox) //nolint:errcheck // constant is valid
	return State{
		DateFrom: DefaultDateFrom,
		DateTo:   DefaultDateTo,
		BBox:     bbox,
	}
}

// NewState builds a validated initial state from configured defaults.
func NewState(dateFrom, dateTo, bbox string) (State, error) {
	box, err := models.ParseBBox(bbox)
	if err != nil {
		return State{}, &ValidationError{Field: "bbox", Reason: err.Error()}
	}
	s := State{DateFrom: dateFrom, DateTo: dateTo, BBox: box}
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	return s, nil
}

// Clone returns a deep copy; tone pointers are not shared.
func (s State) Clone() State {
	out := s
	out.ToneMin = copyFloat(s.ToneMin)
	out.ToneMax = copyFloat(s.ToneMax)
	return out
}

// Equal reports whether two states hold the same values.
func (s State) Equal(o State) bool {
	return s.DateFrom == o.DateFrom &&
		s.DateTo == o.DateTo &&
		s.BBox == o.BBox &&
		s.Query == o.Query &&
		floatPtrEqual(s.ToneMin, o.ToneMin) &&
		floatPtrEqual(s.ToneMax, o.ToneMax)
}

// BBoxParam is the bbox as sent upstream.
func (s State) BBoxParam() string {
	return s.BBox.String()
}

// Validate checks every invariant of a complete state.
func (s State) Validate() error {
	from, err := time.Parse(models.DateLayout, s.DateFrom)
	if err != nil {
		return &ValidationError{Field: "dateFrom", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s.DateFrom)}
	}
	to, err := time.Parse(models.DateLayout, s.DateTo)
	if err != nil {
		return &ValidationError{Field: "dateTo", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s.DateTo)}
	}
	if from.After(to) {
		return &ValidationError{Field: "dateFrom", Reason: fmt.Sprintf("dateFrom %s is after dateTo %s", s.DateFrom, s.DateTo)}
	}
	if err := s.BBox.Validate(); err != nil {
		return &ValidationError{Field: "bbox", Reason: err.Error()}
	}
	if s.ToneMin != nil && s.ToneMax != nil && *s.ToneMin > *s.ToneMax {
		return &ValidationError{Field: "toneMin", Reason: fmt.Sprintf("toneMin %g is greater than toneMax %g", *s.ToneMin, *s.ToneMax)}
	}
	return nil
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	DateFrom *string      `json:"dateFrom,omitempty"`
	DateTo   *string      `json:"dateTo,omitempty"`
	BBox     *models.BBox `json:"bbox,omitempty"`
	Query    *string      `json:"q,omitempty"`
	ToneMin  *float64     `json:"toneMin,omitempty"`
	ToneMax  *float64     `json:"toneMax,omitempty"`

	// ClearToneMin and ClearToneMax remove a tone bound.
	ClearToneMin bool `json:"clearToneMin,omitempty"`
	ClearToneMax bool `json:"clearToneMax,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.DateFrom == nil && p.DateTo == nil && p.BBox == nil && p.Query == nil &&
		p.ToneMin == nil && p.ToneMax == nil && !p.ClearToneMin && !p.ClearToneMax
}

// apply merges the patch into a copy of s.
func (p Patch) apply(s State) State {
	out := s.Clone()
	if p.DateFrom != nil {
		out.DateFrom = *p.DateFrom
	}
	if p.DateTo != nil {
		out.DateTo = *p.DateTo
	}
	if p.BBox != nil {
		out.BBox = p.BBox.Rounded()
	}
	if p.Query != nil {
		out.Query = NormalizeQuery(*p.Query)
	}
	if p.ClearToneMin {
		out.ToneMin = nil
	}
	if p.ClearToneMax {
		out.ToneMax = nil
	}
	if p.ToneMin != nil {
		out.ToneMin = copyFloat(p.ToneMin)
	}
	if p.ToneMax != nil {
		out.ToneMax = copyFloat(p.ToneMax)
	}
	return out
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
