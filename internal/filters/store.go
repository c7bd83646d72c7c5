// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package filters

import "github.com/tomtom215/worldsense/internal/models"

// Source identifies which producer made a change.
type Source string

const (
	// SourceToolbar marks explicit user edits made through Update.
	SourceToolbar Source = "toolbar"
	// SourceViewport marks bbox changes read from the map viewport.
	SourceViewport Source = "viewport"
)

// Change is delivered to subscribers after every effective mutation.
type Change struct {
	Prev   State
	Next   State
	Source Source
}

// BBoxChanged reports whether the bounding box differs between Prev and Next.
func (c Change) BBoxChanged() bool {
	return c.Prev.BBox != c.Next.BBox
}

// Listener receives state changes.
type Listener func(Change)

// Store owns a filter State.
type Store struct {
	state      State
	userBBox   bool
	listeners  map[int]Listener
	order      []int
	nextListen int
}

// NewStore creates a store holding initial, which must be valid.
func NewStore(initial State) (*Store, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &Store{
		state:     initial.Clone(),
		listeners: make(map[int]Listener),
	}, nil
}

// State returns a copy of the current state.
func (s *Store) State() State {
	return s.state.Clone()
}

// BBoxUserEdited reports whether the current bbox came from the toolbar
// rather than the map viewport.
func (s *Store) BBoxUserEdited() bool {
	return s.userBBox
}

// Update merges p into the state. The merged state is validated first; on
// failure a *ValidationError is returned and nothing changes. A patch that
// yields an identical state is a no-op and notifies nobody.
func (s *Store) Update(p Patch) error {
	next := p.apply(s.state)
	if err := next.Validate(); err != nil {
		return err
	}
	if next.Equal(s.state) {
		return nil
	}
	if p.BBox != nil && next.BBox != s.state.BBox {
		s.userBBox = true
	}
	s.commit(next, SourceToolbar)
	return nil
}

// SetBboxFromViewport replaces only the bbox. It does not mark the bbox as
// user edited. Value-equal boxes are skipped and false is returned.
func (s *Store) SetBboxFromViewport(b models.BBox) (bool, error) {
	b = b.Rounded()
	if err := b.Validate(); err != nil {
		return false, &ValidationError{Field: "bbox", Reason: err.Error()}
	}
	if b == s.state.BBox {
		return false, nil
	}
	next := s.state.Clone()
	next.BBox = b
	s.userBBox = false
	s.commit(next, SourceViewport)
	return true, nil
}

// Subscribe registers fn for change notifications in registration order.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn Listener) func() {
	id := s.nextListen
	s.nextListen++
	s.listeners[id] = fn
	s.order = append(s.order, id)
	return func() {
		if _, ok := s.listeners[id]; !ok {
			return
		}
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *Store) commit(next State, source Source) {
	prev := s.state
	s.state = next
	change := Change{Prev: prev.Clone(), Next: next.Clone(), Source: source}
	// Copy so listeners may unsubscribe while being notified.
	ids := append([]int(nil), s.order...)
	for _, id := range ids {
		if fn, ok := s.listeners[id]; ok {
			fn(change)
		}
	}
}
