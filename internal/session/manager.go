// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/worldsense/internal/fetch"
	"github.com/tomtom215/worldsense/internal/logging"
	"github.com/tomtom215/worldsense/internal/metrics"
	"github.com/tomtom215/worldsense/internal/tracking"
)

// Manager owns every live session.
type Manager struct {
	cfg     Config
	fetcher fetch.Fetcher
	pub     Publisher
	tracker *tracking.Tracker
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager. pub and tracker may be nil.
func NewManager(cfg Config, fetcher fetch.Fetcher, pub Publisher, tracker *tracking.Tracker) *Manager {
	return &Manager{
		cfg:      cfg,
		fetcher:  fetcher,
		pub:      pub,
		tracker:  tracker,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session for owner and issues its first fetches.
func (m *Manager) Create(ctx context.Context, owner string, opts CreateOptions) (*Session, error) {
	m.mu.RLock()
	full := m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions
	m.mu.RUnlock()
	if full {
		return nil, ErrTooManySessions
	}

	id := uuid.New().String()
	s, err := newSession(id, owner, m.cfg, m.fetcher, m.pub, m.tracker, opts, m.now())
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		s.Close()
		return nil, ErrTooManySessions
	}
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	logging.Ctx(ctx).Info().
		Str("session_id", id).
		Str("owner", logging.SanitizeUserID(owner)).
		Msg("Session created")
	return s, nil
}

// Get returns owner's session id and marks it active. Sessions of other
// owners are reported as not found.
func (m *Manager) Get(id, owner string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.owner != owner {
		return nil, ErrSessionNotFound
	}
	s.Touch(m.now())
	return s, nil
}

// Close closes owner's session id.
func (m *Manager) Close(id, owner string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok || s.owner != owner {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	s.Close()
	metrics.ActiveSessions.Set(float64(n))
	logging.Info().Str("session_id", id).Msg("Session closed")
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap closes every session idle for longer than the TTL and returns how
// many were closed. A session with a connected websocket is watching its
// panels and counts as active.
func (m *Manager) Reap(now time.Time) int {
	if m.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-m.cfg.IdleTTL)

	var idle []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if !s.LastSeen().Before(cutoff) {
			continue
		}
		if m.pub != nil && m.pub.TopicClientCount(id) > 0 {
			s.Touch(now)
			continue
		}
		idle = append(idle, s)
		delete(m.sessions, id)
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
		logging.Debug().Str("session_id", s.id).Msg("Reaped idle session")
	}
	if len(idle) > 0 {
		metrics.ActiveSessions.Set(float64(n))
		logging.Info().Int("reaped", len(idle)).Int("remaining", n).Msg("Idle sessions reaped")
	}
	return len(idle)
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range all {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Close()
		}(s)
	}
	wg.Wait()
	metrics.ActiveSessions.Set(0)
}

// Serve runs the idle reaper until ctx is cancelled, then closes every
// session. It implements suture.Service.
func (m *Manager) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.ReapInterval)
	defer ticker.Stop()

	logging.Info().
		Dur("idle_ttl", m.cfg.IdleTTL).
		Dur("interval", m.cfg.ReapInterval).
		Msg("Session reaper started")
	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			logging.Info().Msg("Session reaper stopped, all sessions closed")
			return ctx.Err()
		case <-ticker.C:
			m.Reap(m.now())
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (m *Manager) String() string {
	return "session-reaper"
}
