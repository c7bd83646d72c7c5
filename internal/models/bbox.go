// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DateLayout is the calendar date encoding used by dateFrom/dateTo (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// BBoxPrecision is the number of decimals kept for viewport coordinates.
const BBoxPrecision = 5

// Errors returned by bounding box parsing and validation.
var (
	ErrBBoxFormat = errors.New("bbox must be four comma-separated numbers: west,south,east,north")
	ErrBBoxRange  = errors.New("bbox coordinates out of range")
	ErrBBoxOrder  = errors.New("bbox requires west < east and south < north")
)

// BBox is a geographic bounding box in decimal degrees.
type BBox struct {
	West  float64 `json:"west" validate:"min=-180,max=180"`
	South float64 `json:"south" validate:"min=-90,max=90"`
	East  float64 `json:"east" validate:"min=-180,max=180"`
	North float64 `json:"north" validate:"min=-90,max=90"`
}

// Validate checks coordinate ranges and ordering.
func (b BBox) Validate() error {
	for _, v := range []float64{b.West, b.South, b.East, b.North} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrBBoxRange
		}
	}
	if b.West < -180 || b.East > 180 || b.South < -90 || b.North > 90 {
		return ErrBBoxRange
	}
	if b.West >= b.East || b.South >= b.North {
		return ErrBBoxOrder
	}
	return nil
}

// Rounded returns the box with every coordinate rounded to BBoxPrecision decimals.
func (b BBox) Rounded() BBox {
	return BBox{
		West:  roundTo(b.West, BBoxPrecision),
		South: roundTo(b.South, BBoxPrecision),
		East:  roundTo(b.East, BBoxPrecision),
		North: roundTo(b.North, BBoxPrecision),
	}
}

// String formats the box as "west,south,east,north" with five decimals,
// the representation sent upstream as the bbox query parameter.
func (b BBox) String() string {
	return fmt.Sprintf("%.5f,%.5f,%.5f,%.5f", b.West, b.South, b.East, b.North)
}

// Equal compares two boxes at viewport precision.
func (b BBox) Equal(other BBox) bool {
	return b.Rounded() == other.Rounded()
}

// ParseBBox parses "west,south,east,north" and validates the result.
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BBox{}, ErrBBoxFormat
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BBox{}, fmt.Errorf("%w: %q", ErrBBoxFormat, p)
		}
		vals[i] = v
	}
	b := BBox{West: vals[0], South: vals[1], East: vals[2], North: vals[3]}
	if err := b.Validate(); err != nil {
		return BBox{}, err
	}
	return b, nil
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
