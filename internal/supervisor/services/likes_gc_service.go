// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package services

import (
	"context"
	"time"

	"github.com/tomtom215/worldsense/internal/logging"
)

// DefaultGCInterval is used when the configured interval is not positive.
const DefaultGCInterval = 10 * time.Minute

// GCRunner is satisfied by *likes.BadgerStore.
type GCRunner interface {
	RunGC() error
}

// LikesGCService periodically reclaims value log space in the likes store.
// A failed pass is logged and retried on the next tick; it never restarts
// the service.
type LikesGCService struct {
	store    GCRunner
	interval time.Duration
}

// NewLikesGCService creates the GC loop for store.
func NewLikesGCService(store GCRunner, interval time.Duration) *LikesGCService {
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	return &LikesGCService{store: store, interval: interval}
}

// Serve implements suture.Service.
func (s *LikesGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.store.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("Likes store GC failed")
				continue
			}
			logging.Debug().Dur("took", time.Since(start)).Msg("Likes store GC pass complete")
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *LikesGCService) String() string {
	return "likes-gc"
}
