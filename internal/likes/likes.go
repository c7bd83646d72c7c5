// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

// Package likes persists the events a user has liked, scoped per identity.
//
// Business code depends only on the Store interface. Two implementations
// exist: MemoryStore for tests and ephemeral deployments, and BadgerStore,
// an embedded BadgerDB database used by default.
package likes

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/worldsense/internal/config"
	"github.com/tomtom215/worldsense/internal/models"
)

// Store type names accepted by Open.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
)

var (
	// ErrLikeNotFound is returned when the owner has no like with the key.
	ErrLikeNotFound = errors.New("like not found")

	// ErrAlreadyLiked is returned when the owner already liked the event.
	ErrAlreadyLiked = errors.New("event already liked")

	// ErrInvalidLike is returned for likes without an event ID or owner.
	ErrInvalidLike = errors.New("invalid like")

	// ErrStoreClosed is returned after Close.
	ErrStoreClosed = errors.New("likes store closed")
)

// Store is a per-owner key-value store of liked events. Likes are created
// and deleted, never updated.
type Store interface {
	Get(ctx context.Context, owner, key string) (*models.LikedEvent, error)
	Put(ctx context.Context, owner string, like *models.LikedEvent) error
	Delete(ctx context.Context, owner, key string) error
	List(ctx context.Context, owner string) ([]models.LikedEvent, error)
	Close() error
}

// Key derives the composite key of a liked event from its ID, tone and
// coordinates. Coordinates use the same five-decimal precision as bboxes.
func Key(eventID string, tone, lon, lat float64) string {
	return strings.Join([]string{
		strings.TrimSpace(eventID),
		strconv.FormatFloat(tone, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', models.BBoxPrecision, 64),
		strconv.FormatFloat(lat, 'f', models.BBoxPrecision, 64),
	}, "_")
}

// prepare validates a like before it is stored, filling in Key and LikedAt.
func prepare(owner string, like *models.LikedEvent, now time.Time) error {
	if owner == "" {
		return fmt.Errorf("%w: empty owner", ErrInvalidLike)
	}
	if like == nil || strings.TrimSpace(like.EventID) == "" {
		return fmt.Errorf("%w: missing event id", ErrInvalidLike)
	}
	like.Key = Key(like.EventID, like.Tone, like.Lon, like.Lat)
	if like.LikedAt.IsZero() {
		like.LikedAt = now.UTC()
	}
	return nil
}

// Open builds the store selected by cfg.
func Open(cfg config.LikesConfig) (Store, error) {
	switch cfg.Store {
	case StoreMemory:
		return NewMemoryStore(), nil
	case StoreBadger, "":
		return OpenBadger(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown likes store %q", cfg.Store)
	}
}
