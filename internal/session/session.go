// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/worldsense/internal/aggregate"
	"github.com/tomtom215/worldsense/internal/fetch"
	"github.com/tomtom215/worldsense/internal/filters"
	"github.com/tomtom215/worldsense/internal/logging"
	"github.com/tomtom215/worldsense/internal/metrics"
	"github.com/tomtom215/worldsense/internal/models"
	"github.com/tomtom215/worldsense/internal/tracking"
	"github.com/tomtom215/worldsense/internal/viewport"
	"github.com/tomtom215/worldsense/internal/websocket"
)

var (
	// ErrSessionNotFound is returned for unknown, closed or foreign sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed is returned when work is submitted to a closed session.
	ErrSessionClosed = errors.New("session closed")
	// ErrTooManySessions is returned when the session limit is reached.
	ErrTooManySessions = errors.New("too many sessions")
	// ErrInvalidPage is returned for page numbers below 1.
	ErrInvalidPage = errors.New("page must be at least 1")
)

// Publisher pushes messages to the browsers attached to a session.
type Publisher interface {
	Publish(topic, messageType string, data interface{})
	CloseTopic(topic string)
	TopicClientCount(topic string) int
}

// StateView is the filter state pushed to the browser.
type StateView struct {
	Filters        filters.State `json:"filters"`
	BBoxUserEdited bool          `json:"bboxUserEdited"`
	Page           int           `json:"page"`
}

// PanelUpdate is one endpoint transition pushed to the browser.
type PanelUpdate struct {
	Endpoint fetch.Endpoint `json:"endpoint"`
	Result   fetch.Result   `json:"result"`
}

// Snapshot is the full state of a session.
type Snapshot struct {
	ID             string                          `json:"id"`
	Owner          string                          `json:"owner"`
	State          filters.State                   `json:"state"`
	BBoxUserEdited bool                            `json:"bboxUserEdited"`
	Pagination     models.Pagination               `json:"pagination"`
	Panels         map[fetch.Endpoint]fetch.Result `json:"panels"`
	Summary        aggregate.Summary               `json:"summary"`
	CreatedAt      time.Time                       `json:"createdAt"`
	LastSeen       time.Time                       `json:"lastSeen"`
}

// SearchRequest is a toolbar search: structured clauses plus optional
// date range and bbox edits.
type SearchRequest struct {
	filters.Clauses
	DateFrom *string      `json:"dateFrom,omitempty"`
	DateTo   *string      `json:"dateTo,omitempty"`
	BBox     *models.BBox `json:"bbox,omitempty"`
}

// Session is one dashboard tab.
type Session struct {
	id       string
	owner    string
	created  time.Time
	lastSeen atomic.Int64
	pageSize int

	ctx      context.Context
	cancel   context.CancelFunc
	ops      chan func()
	loopDone chan struct{}
	closed   sync.Once

	// Owned by the event loop.
	store   *filters.Store
	binding *viewport.Binding
	page    int

	view      *clientMap
	orch      *fetch.Orchestrator
	debouncer *viewport.Debouncer
	pub       Publisher
	tracker   *tracking.Tracker

	panelMu sync.RWMutex
	panels  map[fetch.Endpoint]fetch.Result
	summary aggregate.Summary
	total   int64 // last successful search total
}

// CreateOptions are the optional inputs of a new session.
type CreateOptions struct {
	// Viewport is the map bounds the browser starts with.
	Viewport *models.BBox `json:"viewport,omitempty"`
	// Filters are applied before the first fetch. A bbox here counts as a
	// user edit and the map is fitted to it.
	Filters *filters.Patch `json:"filters,omitempty"`
}

func newSession(id, owner string, cfg Config, fetcher fetch.Fetcher, pub Publisher, tracker *tracking.Tracker, opts CreateOptions, now time.Time) (*Session, error) {
	store, err := filters.NewStore(cfg.DefaultState)
	if err != nil {
		return nil, err
	}
	if opts.Filters != nil {
		if err := store.Update(*opts.Filters); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(logging.ContextWithSessionID(context.Background(), id))
	s := &Session{
		id:        id,
		owner:     owner,
		created:   now,
		pageSize:  cfg.pageSize(),
		ctx:       ctx,
		cancel:    cancel,
		ops:       make(chan func(), 64),
		loopDone:  make(chan struct{}),
		store:     store,
		page:      1,
		orch:      fetch.NewOrchestrator(ctx, fetcher, cfg.Fetch),
		debouncer: viewport.NewDebouncer(cfg.MoveEndDebounce),
		pub:       pub,
		tracker:   tracker,
		panels:    make(map[fetch.Endpoint]fetch.Result, len(fetch.Endpoints)),
	}
	s.lastSeen.Store(now.UnixNano())
	for _, ep := range fetch.Endpoints {
		s.panels[ep] = fetch.Result{Status: fetch.StatusIdle}
	}

	initial := store.State().BBox
	if opts.Viewport != nil {
		initial = *opts.Viewport
	}
	s.view = &clientMap{bounds: initial, fit: s.publishFit}

	s.orch.Subscribe(s.onResult)
	store.Subscribe(s.onFilterChange)
	s.binding = viewport.NewBinding(store, s.view)

	switch {
	case opts.Filters != nil && opts.Filters.BBox != nil:
		s.view.FitBounds(store.State().BBox)
	case opts.Viewport != nil:
		if _, err := s.binding.Mount(); err != nil {
			s.binding.Close()
			s.orch.Close()
			cancel()
			return nil, fmt.Errorf("initial viewport: %w", err)
		}
	}
	// Mount may already have issued the fetches; Sync skips unchanged URLs.
	s.orch.Sync(store.State(), s.page)

	go s.run()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Owner returns the subject the session belongs to.
func (s *Session) Owner() string { return s.owner }

// LastSeen returns the time of the last client activity.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// Touch marks the session as active.
func (s *Session) Touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *Session) run() {
	defer close(s.loopDone)
	for {
		select {
		case fn := <-s.ops:
			fn()
		case <-s.ctx.Done():
			return
		}
	}
}

// post queues fn on the event loop. It reports false once the session is closed.
func (s *Session) post(fn func()) bool {
	select {
	case s.ops <- fn:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// Do runs fn on the event loop and waits for its result.
func (s *Session) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	select {
	case s.ops <- func() { result <- fn() }:
	case <-s.ctx.Done():
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-result:
		return err
	case <-s.loopDone:
		select {
		case err := <-result:
			return err
		default:
			return ErrSessionClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current session state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.Do(ctx, func() error {
		snap.State = s.store.State()
		snap.BBoxUserEdited = s.store.BBoxUserEdited()
		snap.Pagination = models.NewPagination(s.page, s.pageSize, s.searchTotal())
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	snap.ID = s.id
	snap.Owner = s.owner
	snap.CreatedAt = s.created
	snap.LastSeen = s.LastSeen()

	s.panelMu.RLock()
	snap.Panels = make(map[fetch.Endpoint]fetch.Result, len(s.panels))
	for ep, r := range s.panels {
		snap.Panels[ep] = r
	}
	snap.Summary = s.summary
	s.panelMu.RUnlock()
	return snap, nil
}

// UpdateFilters merges a toolbar patch into the filter state.
func (s *Session) UpdateFilters(ctx context.Context, patch filters.Patch) error {
	return s.Do(ctx, func() error {
		if err := s.store.Update(patch); err != nil {
			metrics.RecordFilterUpdate(string(filters.SourceToolbar), "rejected")
			return err
		}
		return nil
	})
}

// Search applies a toolbar search. Searching again with unchanged filters
// reissues every fetch.
func (s *Session) Search(ctx context.Context, req SearchRequest) error {
	q := filters.BuildQueryString(req.Clauses)
	patch := filters.Patch{Query: &q, DateFrom: req.DateFrom, DateTo: req.DateTo, BBox: req.BBox}
	var st filters.State
	err := s.Do(ctx, func() error {
		before := s.store.State()
		if err := s.store.Update(patch); err != nil {
			metrics.RecordFilterUpdate(string(filters.SourceToolbar), "rejected")
			return err
		}
		st = s.store.State()
		if st.Equal(before) {
			s.orch.Refresh()
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.tracker.TrackSearch(s.owner, st)
	return nil
}

// ReportViewport records the client's map bounds after a move-end. The
// store is updated once the debounce delay has passed without another report.
func (s *Session) ReportViewport(bounds models.BBox) {
	s.view.setBounds(bounds)
	s.debouncer.Trigger(func() {
		s.post(func() { s.applyMoveEnd(bounds) })
	})
}

func (s *Session) applyMoveEnd(bounds models.BBox) {
	changed, err := s.binding.OnMoveEnd(bounds)
	if err != nil {
		metrics.RecordFilterUpdate(string(filters.SourceViewport), "rejected")
		logging.Ctx(s.ctx).Debug().Err(err).Msg("Ignored invalid viewport")
		return
	}
	if changed {
		s.tracker.TrackMapInteraction(s.owner, "moveend", map[string]any{
			"bbox": s.store.State().BBoxParam(),
		})
	}
}

// SetPage moves the search panel to page. The page is clamped to the last
// page of the most recent search total.
func (s *Session) SetPage(ctx context.Context, page int) (models.Pagination, error) {
	if page < 1 {
		return models.Pagination{}, ErrInvalidPage
	}
	var p models.Pagination
	err := s.Do(ctx, func() error {
		p = models.NewPagination(page, s.pageSize, s.searchTotal())
		page = p.Page
		if page == s.page {
			return nil
		}
		s.page = page
		s.orch.Sync(s.store.State(), s.page)
		s.publish(websocket.MessageTypeState, s.stateView())
		return nil
	})
	return p, err
}

// Refresh reissues every panel fetch.
func (s *Session) Refresh(ctx context.Context) error {
	return s.Do(ctx, func() error {
		s.orch.Refresh()
		return nil
	})
}

// HandleInbound handles a frame from one of the session's websocket clients.
func (s *Session) HandleInbound(msg websocket.InboundMessage) {
	s.Touch(time.Now())
	switch msg.Type {
	case websocket.MessageTypeMoveEnd:
		var b models.BBox
		if err := json.Unmarshal(msg.Data, &b); err != nil {
			logging.Ctx(s.ctx).Debug().Err(err).Msg("Malformed moveend frame")
			return
		}
		s.ReportViewport(b)
	default:
		logging.Ctx(s.ctx).Debug().Str("type", msg.Type).Msg("Unhandled websocket frame")
	}
}

// Close stops the event loop, cancels in-flight fetches and disconnects the
// session's websocket clients. It is safe to call more than once.
func (s *Session) Close() {
	s.closed.Do(func() {
		s.debouncer.Stop()
		s.cancel()
		<-s.loopDone
		s.binding.Close()
		s.orch.Close()
		if s.pub != nil {
			s.pub.CloseTopic(s.id)
		}
	})
}

// onFilterChange runs on the event loop for every committed change.
func (s *Session) onFilterChange(c filters.Change) {
	// A move-end still waiting out the debounce predates the fit and would
	// undo the toolbar bbox.
	if c.Source == filters.SourceToolbar && c.BBoxChanged() && s.debouncer.Cancel() {
		metrics.RecordFilterUpdate(string(filters.SourceViewport), "superseded")
	}
	s.page = 1
	s.orch.Sync(c.Next, s.page)
	s.publish(websocket.MessageTypeState, s.stateView())
	metrics.RecordFilterUpdate(string(c.Source), "applied")
}

// onResult runs with the orchestrator lock held.
func (s *Session) onResult(ep fetch.Endpoint, r fetch.Result) {
	s.panelMu.Lock()
	s.panels[ep] = r
	if resp, ok := r.Data.(*models.SearchResponse); ok && r.Status == fetch.StatusSuccess {
		s.total = resp.Total
	}
	var summary *aggregate.Summary
	if r.Status == fetch.StatusSuccess {
		s.summary = s.summarizeLocked()
		sum := s.summary
		summary = &sum
	}
	s.panelMu.Unlock()

	s.publish(websocket.MessageTypePanel, PanelUpdate{Endpoint: ep, Result: r})
	if summary != nil {
		s.publish(websocket.MessageTypeSummary, summary)
	}
}

func (s *Session) summarizeLocked() aggregate.Summary {
	fc, _ := s.panels[fetch.EndpointMap].Data.(*models.FeatureCollection)
	stats, _ := s.panels[fetch.EndpointStats].Data.(*models.StatsResponse)
	search, _ := s.panels[fetch.EndpointSearch].Data.(*models.SearchResponse)
	return aggregate.Summarize(fc, stats, search)
}

func (s *Session) searchTotal() int64 {
	s.panelMu.RLock()
	defer s.panelMu.RUnlock()
	return s.total
}

func (s *Session) stateView() StateView {
	return StateView{
		Filters:        s.store.State(),
		BBoxUserEdited: s.store.BBoxUserEdited(),
		Page:           s.page,
	}
}

func (s *Session) publishFit(b models.BBox) {
	s.publish(websocket.MessageTypeViewportFit, b)
}

func (s *Session) publish(messageType string, data interface{}) {
	if s.pub != nil {
		s.pub.Publish(s.id, messageType, data)
	}
}

// clientMap is the server-side view of the browser's map widget.
type clientMap struct {
	mu     sync.Mutex
	bounds models.BBox
	fit    func(models.BBox)
}

func (m *clientMap) Bounds() models.BBox {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bounds
}

// FitBounds records b and asks the browser to move its map there.
func (m *clientMap) FitBounds(b models.BBox) {
	m.setBounds(b)
	if m.fit != nil {
		m.fit(b)
	}
}

func (m *clientMap) setBounds(b models.BBox) {
	m.mu.Lock()
	m.bounds = b
	m.mu.Unlock()
}
