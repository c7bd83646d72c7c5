// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package likes

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/worldsense/internal/logging"
	"github.com/tomtom215/worldsense/internal/metrics"
	"github.com/tomtom215/worldsense/internal/models"
)

// keys are "like\x00<len(owner)>:<owner>\x00<key>". The length keeps one
// owner's prefix from matching another owner whose name it starts, even
// when the owner itself contains the separator.
const (
	keyPrefix = "like"
	keySep    = "\x00"
)

// gcDiscardRatio is passed to RunValueLogGC.
const gcDiscardRatio = 0.5

// BadgerStore persists likes in an embedded BadgerDB database.
type BadgerStore struct {
	mu     sync.RWMutex
	db     *badger.DB
	closed bool
	now    func() time.Time
}

// OpenBadger opens (or creates) the database at path. An empty path opens
// an in-memory database.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.SyncWrites = true

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().Str("path", path).Msg("Likes store opened")
	return &BadgerStore{db: db, now: time.Now}, nil
}

func ownerPrefix(owner string) []byte {
	return []byte(keyPrefix + keySep + strconv.Itoa(len(owner)) + ":" + owner + keySep)
}

func dbKey(owner, key string) []byte {
	return append(ownerPrefix(owner), key...)
}

// Get returns one like.
func (s *BadgerStore) Get(_ context.Context, owner, key string) (*models.LikedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	var like models.LikedEvent
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dbKey(owner, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrLikeNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &like)
		})
	})
	if err != nil {
		if errors.Is(err, ErrLikeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get like: %w", err)
	}
	return &like, nil
}

// Put stores a new like.
func (s *BadgerStore) Put(_ context.Context, owner string, like *models.LikedEvent) error {
	if err := prepare(owner, like, s.now()); err != nil {
		metrics.LikesOperations.WithLabelValues("put", "invalid").Inc()
		return err
	}
	data, err := json.Marshal(like)
	if err != nil {
		return fmt.Errorf("marshal like: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	key := dbKey(owner, like.Key)
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrAlreadyLiked
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.SetEntry(badger.NewEntry(key, data))
	})
	switch {
	case errors.Is(err, ErrAlreadyLiked):
		metrics.LikesOperations.WithLabelValues("put", "conflict").Inc()
		return err
	case err != nil:
		metrics.LikesOperations.WithLabelValues("put", "error").Inc()
		return fmt.Errorf("put like: %w", err)
	}
	metrics.LikesOperations.WithLabelValues("put", "success").Inc()
	return nil
}

// Delete removes a like.
func (s *BadgerStore) Delete(_ context.Context, owner, key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	k := dbKey(owner, key)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(k); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrLikeNotFound
			}
			return err
		}
		return txn.Delete(k)
	})
	switch {
	case errors.Is(err, ErrLikeNotFound):
		metrics.LikesOperations.WithLabelValues("delete", "not_found").Inc()
		return err
	case err != nil:
		metrics.LikesOperations.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("delete like: %w", err)
	}
	metrics.LikesOperations.WithLabelValues("delete", "success").Inc()
	return nil
}

// List returns the owner's likes in key order.
func (s *BadgerStore) List(ctx context.Context, owner string) ([]models.LikedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	out := []models.LikedEvent{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := ownerPrefix(owner)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			var like models.LikedEvent
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &like)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("Skipping unreadable like")
				continue
			}
			out = append(out, like)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	return out, nil
}

// RunGC reclaims value log space. It returns nil when there was nothing to
// rewrite.
func (s *BadgerStore) RunGC() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	err := s.db.RunValueLogGC(gcDiscardRatio)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrGCInMemoryMode) {
		return fmt.Errorf("likes value log GC: %w", err)
	}
	return nil
}

// Close closes the database. It is safe to call more than once.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	logging.Info().Msg("Closing likes store")
	return s.db.Close()
}
