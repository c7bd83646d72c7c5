// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

// Package viewport keeps a filter store's bbox in step with a map view.
//
// Map move-end reports flow into the store through SetBboxFromViewport. Bbox
// edits made from the toolbar flow the other way, moving the map with
// FitBounds. The move-end that follows a programmatic move reports the same
// box the store already holds and is skipped by value comparison, which is
// what stops the two directions from feeding each other.
package viewport

import (
	"fmt"

	"github.com/tomtom215/worldsense/internal/filters"
	"github.com/tomtom215/worldsense/internal/models"
)

// Map is the live map widget seen by the binding.
type Map interface {
	// Bounds returns the currently visible bounds.
	Bounds() models.BBox
	// FitBounds moves the map so that b is visible.
	FitBounds(b models.BBox)
}

// Binding connects one Map to one filters.Store.
type Binding struct {
	store       *filters.Store
	view        Map
	unsubscribe func()
}

// NewBinding subscribes to store so that toolbar bbox edits move view.
func NewBinding(store *filters.Store, view Map) *Binding {
	b := &Binding{store: store, view: view}
	b.unsubscribe = store.Subscribe(b.onChange)
	return b
}

// Mount performs the initial synchronous read of the map bounds so the store
// reflects the real starting viewport instead of the configured default.
func (b *Binding) Mount() (bool, error) {
	return b.OnMoveEnd(b.view.Bounds())
}

// OnMoveEnd handles a map move-end. Bounds are clamped to the world, rounded
// to five decimals and written to the store unless they equal the current bbox.
// It reports whether the store changed.
func (b *Binding) OnMoveEnd(bounds models.BBox) (bool, error) {
	box, err := ClampToWorld(bounds)
	if err != nil {
		return false, err
	}
	box = box.Rounded()
	if box == b.store.State().BBox {
		return false, nil
	}
	return b.store.SetBboxFromViewport(box)
}

// Close detaches the binding from the store.
func (b *Binding) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}

func (b *Binding) onChange(c filters.Change) {
	if c.Source != filters.SourceToolbar || !c.BBoxChanged() {
		return
	}
	b.view.FitBounds(c.Next.BBox)
}

// ClampToWorld limits a viewport to valid longitude and latitude ranges. Maps
// zoomed out past one world width report longitudes beyond +-180.
func ClampToWorld(b models.BBox) (models.BBox, error) {
	out := models.BBox{
		West:  clamp(b.West, -180, 180),
		South: clamp(b.South, -90, 90),
		East:  clamp(b.East, -180, 180),
		North: clamp(b.North, -90, 90),
	}
	if err := out.Validate(); err != nil {
		return models.BBox{}, &filters.ValidationError{Field: "bbox", Reason: fmt.Sprintf("viewport %s: %v", b, err)}
	}
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
