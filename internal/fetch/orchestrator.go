// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package fetch

import (
	"context"
	"sync"

	"github.com/tomtom215/worldsense/internal/filters"
	"github.com/tomtom215/worldsense/internal/logging"
	"github.com/tomtom215/worldsense/internal/metrics"
)

// Status is the lifecycle state of one endpoint's result.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the current outcome for one endpoint. It is replaced, never
// merged, on every transition.
type Result struct {
	Status    Status `json:"status"`
	Data      any    `json:"data"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"errorKind,omitempty"`
	Seq       uint64 `json:"seq"`
	URL       string `json:"-"`
}

// Listener is called for every applied transition. It runs with the
// orchestrator lock held and must not call back into the Orchestrator.
type Listener func(ep Endpoint, r Result)

// Options configures an Orchestrator.
type Options struct {
	BaseURL string
	Fixed   FixedParams
	// StaleWhileRevalidate keeps the last data while loading and after an
	// error. When false, both transitions clear Data.
	StaleWhileRevalidate bool
}

type slot struct {
	seq    uint64
	url    string
	cancel context.CancelFunc
	result Result
}

// Orchestrator derives the three endpoint URLs from filter state and runs
// their fetches independently. Each endpoint carries a monotonically
// increasing sequence number; a resolution is applied only when its number is
// still the latest issued for that endpoint, so a panel never regresses to an
// older response.
type Orchestrator struct {
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	fetcher   Fetcher
	opts      Options
	slots     map[Endpoint]*slot
	listeners []Listener
	wg        sync.WaitGroup
	closed    bool
}

// NewOrchestrator creates an orchestrator. In-flight fetches are bound to ctx.
func NewOrchestrator(ctx context.Context, fetcher Fetcher, opts Options) *Orchestrator {
	ctx, cancel := context.WithCancel(ctx)
	o := &Orchestrator{
		ctx:     ctx,
		cancel:  cancel,
		fetcher: fetcher,
		opts:    opts,
		slots:   make(map[Endpoint]*slot, len(Endpoints)),
	}
	for _, ep := range Endpoints {
		o.slots[ep] = &slot{result: Result{Status: StatusIdle}}
	}
	return o
}

// Subscribe registers fn for result transitions.
func (o *Orchestrator) Subscribe(fn Listener) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, fn)
}

// Sync recomputes every endpoint URL from st and the search page, and issues a
// fetch for each endpoint whose URL changed. Unchanged endpoints are left alone.
// It returns the endpoints that were (re)issued.
func (o *Orchestrator) Sync(st filters.State, page int) []Endpoint {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}

	fixed := o.opts.Fixed
	fixed.SearchPage = page

	var issued []Endpoint
	for _, ep := range Endpoints {
		next := BuildURL(o.opts.BaseURL, ep, st, fixed)
		s := o.slots[ep]
		if next == s.url {
			continue
		}
		if next == "" {
			o.resetLocked(ep, s)
			continue
		}
		o.issueLocked(ep, s, next)
		issued = append(issued, ep)
	}
	return issued
}

// Refresh reissues every endpoint that has a URL, even if unchanged.
func (o *Orchestrator) Refresh() []Endpoint {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	var issued []Endpoint
	for _, ep := range Endpoints {
		s := o.slots[ep]
		if s.url == "" {
			continue
		}
		o.issueLocked(ep, s, s.url)
		issued = append(issued, ep)
	}
	return issued
}

// Result returns the current result for ep.
func (o *Orchestrator) Result(ep Endpoint) Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.slots[ep]; ok {
		return s.result
	}
	return Result{Status: StatusIdle}
}

// Results returns a snapshot of every endpoint.
func (o *Orchestrator) Results() map[Endpoint]Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[Endpoint]Result, len(o.slots))
	for ep, s := range o.slots {
		out[ep] = s.result
	}
	return out
}

// Close cancels in-flight fetches and waits for their goroutines. Late
// resolutions are discarded.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	for _, s := range o.slots {
		s.seq++
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
	}
	o.mu.Unlock()
	o.cancel()
	o.wg.Wait()
}

func (o *Orchestrator) issueLocked(ep Endpoint, s *slot, url string) {
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	s.url = url

	ctx, cancel := context.WithCancel(o.ctx)
	s.cancel = cancel

	next := Result{Status: StatusLoading, Seq: seq, URL: url}
	if o.opts.StaleWhileRevalidate {
		next.Data = s.result.Data
	}
	o.setLocked(ep, s, next)
	metrics.FetchesIssued.WithLabelValues(string(ep)).Inc()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer cancel()
		data, err := o.fetcher.Fetch(ctx, ep, url)
		o.resolve(ctx, ep, seq, data, err)
	}()
}

func (o *Orchestrator) resetLocked(ep Endpoint, s *slot) {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	s.url = ""
	o.setLocked(ep, s, Result{Status: StatusIdle, Seq: s.seq})
}

func (o *Orchestrator) resolve(ctx context.Context, ep Endpoint, seq uint64, data any, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.slots[ep]
	if seq != s.seq {
		metrics.StaleResponsesDiscarded.WithLabelValues(string(ep)).Inc()
		logging.Ctx(ctx).Debug().
			Str("endpoint", string(ep)).
			Uint64("seq", seq).
			Uint64("latest", s.seq).
			Msg("Discarded stale response")
		return
	}
	s.cancel = nil

	next := Result{Seq: seq, URL: s.url}
	if err != nil {
		next.Status = StatusError
		next.Error = err.Error()
		next.ErrorKind = ErrorKind(err)
		if o.opts.StaleWhileRevalidate {
			next.Data = s.result.Data
		}
		logging.Ctx(ctx).Warn().Str("endpoint", string(ep)).Err(err).Msg("Panel fetch failed")
	} else {
		next.Status = StatusSuccess
		next.Data = data
	}
	metrics.RecordFetchResult(string(ep), err == nil)
	o.setLocked(ep, s, next)
}

func (o *Orchestrator) setLocked(ep Endpoint, s *slot, r Result) {
	s.result = r
	for _, fn := range o.listeners {
		fn(ep, r)
	}
}
