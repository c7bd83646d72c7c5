// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package fetch

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/worldsense/internal/filters"
	"github.com/tomtom215/worldsense/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

type outcome struct {
	data any
	err  error
}

type pendingCall struct {
	ep   Endpoint
	url  string
	done chan outcome
}

// gatedFetcher blocks every call until the test resolves it. It ignores
// context cancellation so staleness is exercised without aborts.
type gatedFetcher struct {
	started chan *pendingCall
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{started: make(chan *pendingCall, 16)}
}

func (f *gatedFetcher) Fetch(_ context.Context, ep Endpoint, url string) (any, error) {
	c := &pendingCall{ep: ep, url: url, done: make(chan outcome, 1)}
	f.started <- c
	out := <-c.done
	return out.data, out.err
}

func (f *gatedFetcher) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case c := <-f.started:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no fetch started")
		return nil
	}
}

// recorder collects applied transitions.
type recorder struct {
	mu      sync.Mutex
	applied map[Endpoint][]Result
	signal  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{applied: make(map[Endpoint][]Result), signal: make(chan struct{}, 64)}
}

func (r *recorder) listen(ep Endpoint, res Result) {
	r.mu.Lock()
	r.applied[ep] = append(r.applied[ep], res)
	r.mu.Unlock()
	select {
	case r.signal <- struct{}{}:
	default:
	}
}

func (r *recorder) waitFor(t *testing.T, o *Orchestrator, ep Endpoint, status Status) Result {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if res := o.Result(ep); res.Status == status {
			return res
		}
		select {
		case <-r.signal:
		case <-deadline:
			t.Fatalf("%s never reached %s (now %s)", ep, status, o.Result(ep).Status)
		}
	}
}

func newTestOrchestrator(t *testing.T, swr bool) (*Orchestrator, *gatedFetcher, *recorder) {
	t.Helper()
	f := newGatedFetcher()
	o := NewOrchestrator(context.Background(), f, Options{
		BaseURL:              "http://gdelt.test",
		Fixed:                DefaultFixedParams(),
		StaleWhileRevalidate: swr,
	})
	rec := newRecorder()
	o.Subscribe(rec.listen)
	return o, f, rec
}

// drainInitial resolves the three fetches issued by the first Sync.
func drainInitial(t *testing.T, o *Orchestrator, f *gatedFetcher, rec *recorder) {
	t.Helper()
	for i := 0; i < 3; i++ {
		c := f.next(t)
		c.done <- outcome{data: "initial-" + string(c.ep)}
	}
	for _, ep := range Endpoints {
		rec.waitFor(t, o, ep, StatusSuccess)
	}
}

func TestOrchestrator_InitialSyncIssuesAll(t *testing.T) {
	o, f, rec := newTestOrchestrator(t, false)
	defer o.Close()

	for _, ep := range Endpoints {
		if o.Result(ep).Status != StatusIdle {
			t.Fatalf("%s should start idle", ep)
		}
	}
	issued := o.Sync(filters.DefaultState(), 1)
	if len(issued) != 3 {
		t.Fatalf("issued %v, want all three", issued)
	}
	for _, ep := range Endpoints {
		if o.Result(ep).Status != StatusLoading {
			t.Errorf("%s should be loading", ep)
		}
	}
	drainInitial(t, o, f, rec)
	if got := o.Result(EndpointMap).Data; got != "initial-map" {
		t.Errorf("map data = %v", got)
	}
}

func TestOrchestrator_LateStaleResponseIsDiscarded(t *testing.T) {
	o, f, rec := newTestOrchestrator(t, false)
	defer o.Close()

	st := filters.DefaultState()
	o.Sync(st, 1)
	drainInitial(t, o, f, rec)

	st.Query = "theme:A"
	o.Sync(st, 1)
	var a *pendingCall
	for i := 0; i < 3; i++ {
		if c := f.next(t); c.ep == EndpointMap {
			a = c
		} else {
			c.done <- outcome{data: "ignored"}
		}
	}

	st.Query = "theme:B"
	o.Sync(st, 1)
	var b *pendingCall
	for i := 0; i < 3; i++ {
		if c := f.next(t); c.ep == EndpointMap {
			b = c
		} else {
			c.done <- outcome{data: "ignored"}
		}
	}

	// B resolves first, then the older A.
	b.done <- outcome{data: "B"}
	rec.waitFor(t, o, EndpointMap, StatusSuccess)
	a.done <- outcome{data: "A"}

	// A's goroutine must finish before the final check.
	time.Sleep(50 * time.Millisecond)
	if got := o.Result(EndpointMap); got.Data != "B" {
		t.Errorf("map result = %+v, want B's outcome", got)
	}
}

func TestOrchestrator_EarlyStaleResponseIsDiscarded(t *testing.T) {
	o, f, rec := newTestOrchestrator(t, false)
	defer o.Close()

	st := filters.DefaultState()
	o.Sync(st, 1)
	drainInitial(t, o, f, rec)

	o.Sync(st, 2)
	a := f.next(t)
	o.Sync(st, 3)
	b := f.next(t)
	if a.ep != EndpointSearch || b.ep != EndpointSearch {
		t.Fatalf("page change should only reissue search, got %s and %s", a.ep, b.ep)
	}

	// A fails before B resolves: its failure must not surface.
	a.done <- outcome{err: errors.New("boom")}
	time.Sleep(50 * time.Millisecond)
	if got := o.Result(EndpointSearch); got.Status != StatusLoading {
		t.Fatalf("search status = %s, want loading", got.Status)
	}

	b.done <- outcome{data: "page-3"}
	res := rec.waitFor(t, o, EndpointSearch, StatusSuccess)
	if res.Data != "page-3" {
		t.Errorf("search data = %v", res.Data)
	}
}

func TestOrchestrator_EndpointsAreIndependent(t *testing.T) {
	o, f, rec := newTestOrchestrator(t, false)
	defer o.Close()

	st := filters.DefaultState()
	o.Sync(st, 1)
	drainInitial(t, o, f, rec)

	// Tone bounds feed map and search only.
	st.ToneMin = floatPtr(-1)
	issued := o.Sync(st, 1)
	if len(issued) != 2 || issued[0] != EndpointMap || issued[1] != EndpointSearch {
		t.Fatalf("issued = %v, want [map search]", issued)
	}
	if o.Result(EndpointStats).Status != StatusSuccess {
		t.Error("stats must be untouched by a tone change")
	}

	for i := 0; i < 2; i++ {
		c := f.next(t)
		if c.ep == EndpointMap {
			c.done <- outcome{err: &HTTPError{Endpoint: EndpointMap, StatusCode: 502}}
		} else {
			c.done <- outcome{data: "search-ok"}
		}
	}
	mapRes := rec.waitFor(t, o, EndpointMap, StatusError)
	rec.waitFor(t, o, EndpointSearch, StatusSuccess)

	if mapRes.ErrorKind != "http_error" || mapRes.Error == "" {
		t.Errorf("map error = %+v", mapRes)
	}
	if o.Result(EndpointStats).Data != "initial-stats" {
		t.Error("map failure must not affect stats")
	}
}

func TestOrchestrator_ErrorPolicy(t *testing.T) {
	tests := []struct {
		name        string
		swr         bool
		wantLoading any
		wantError   any
	}{
		{"clear", false, nil, nil},
		{"stale while revalidate", true, "initial-stats", "initial-stats"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, f, rec := newTestOrchestrator(t, tt.swr)
			defer o.Close()

			st := filters.DefaultState()
			o.Sync(st, 1)
			drainInitial(t, o, f, rec)

			o.Refresh()
			if got := o.Result(EndpointStats).Data; got != tt.wantLoading {
				t.Errorf("loading data = %v, want %v", got, tt.wantLoading)
			}
			for i := 0; i < 3; i++ {
				c := f.next(t)
				c.done <- outcome{err: &NetworkError{Endpoint: c.ep, Err: errors.New("connection reset")}}
			}
			res := rec.waitFor(t, o, EndpointStats, StatusError)
			if res.Data != tt.wantError {
				t.Errorf("error data = %v, want %v", res.Data, tt.wantError)
			}
		})
	}
}

func TestOrchestrator_SeqIsMonotonic(t *testing.T) {
	o, f, rec := newTestOrchestrator(t, false)
	defer o.Close()

	st := filters.DefaultState()
	o.Sync(st, 1)
	drainInitial(t, o, f, rec)
	o.Refresh()
	for i := 0; i < 3; i++ {
		c := f.next(t)
		c.done <- outcome{data: "again"}
	}
	rec.waitFor(t, o, EndpointMap, StatusSuccess)
	time.Sleep(20 * time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	var last uint64
	for _, r := range rec.applied[EndpointMap] {
		if r.Seq < last {
			t.Fatalf("sequence regressed: %d after %d", r.Seq, last)
		}
		last = r.Seq
	}
	if last != 2 {
		t.Errorf("final map seq = %d, want 2", last)
	}
}

func TestOrchestrator_CloseDiscardsLateResults(t *testing.T) {
	o, f, _ := newTestOrchestrator(t, false)

	o.Sync(filters.DefaultState(), 1)
	calls := []*pendingCall{f.next(t), f.next(t), f.next(t)}

	closed := make(chan struct{})
	go func() {
		o.Close()
		close(closed)
	}()
	time.Sleep(20 * time.Millisecond)
	for _, c := range calls {
		c.done <- outcome{data: "late"}
	}

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() did not return")
	}
	for _, ep := range Endpoints {
		if o.Result(ep).Status != StatusLoading {
			t.Errorf("%s changed after close: %+v", ep, o.Result(ep))
		}
	}
	if issued := o.Sync(filters.DefaultState(), 2); issued != nil {
		t.Errorf("Sync after Close issued %v", issued)
	}
}
