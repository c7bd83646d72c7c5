// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package likes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/worldsense/internal/metrics"
	"github.com/tomtom215/worldsense/internal/models"
)

// MemoryStore keeps likes in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	likes  map[string]map[string]models.LikedEvent
	closed bool
	now    func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		likes: make(map[string]map[string]models.LikedEvent),
		now:   time.Now,
	}
}

// Get returns one like.
func (s *MemoryStore) Get(_ context.Context, owner, key string) (*models.LikedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	like, ok := s.likes[owner][key]
	if !ok {
		return nil, ErrLikeNotFound
	}
	return &like, nil
}

// Put stores a new like.
func (s *MemoryStore) Put(_ context.Context, owner string, like *models.LikedEvent) error {
	if err := prepare(owner, like, s.now()); err != nil {
		metrics.LikesOperations.WithLabelValues("put", "invalid").Inc()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	byKey, ok := s.likes[owner]
	if !ok {
		byKey = make(map[string]models.LikedEvent)
		s.likes[owner] = byKey
	}
	if _, exists := byKey[like.Key]; exists {
		metrics.LikesOperations.WithLabelValues("put", "conflict").Inc()
		return ErrAlreadyLiked
	}
	byKey[like.Key] = *like
	metrics.LikesOperations.WithLabelValues("put", "success").Inc()
	return nil
}

// Delete removes a like.
func (s *MemoryStore) Delete(_ context.Context, owner, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if _, ok := s.likes[owner][key]; !ok {
		metrics.LikesOperations.WithLabelValues("delete", "not_found").Inc()
		return ErrLikeNotFound
	}
	delete(s.likes[owner], key)
	if len(s.likes[owner]) == 0 {
		delete(s.likes, owner)
	}
	metrics.LikesOperations.WithLabelValues("delete", "success").Inc()
	return nil
}

// List returns the owner's likes ordered by key.
func (s *MemoryStore) List(_ context.Context, owner string) ([]models.LikedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	out := make([]models.LikedEvent, 0, len(s.likes[owner]))
	for _, like := range s.likes[owner] {
		out = append(out, like)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Close marks the store closed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
