// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package tracking

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/worldsense/internal/auth"
	"github.com/tomtom215/worldsense/internal/config"
	"github.com/tomtom215/worldsense/internal/filters"
	"github.com/tomtom215/worldsense/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

// fakePublisher records NATS publishes.
type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	messages []*message.Message
	err      error
	closed   bool
}

func (p *fakePublisher) Publish(topic string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	for _, msg := range msgs {
		p.subjects = append(p.subjects, topic)
		p.payloads = append(p.payloads, msg.Payload)
		p.messages = append(p.messages, msg)
	}
	return nil
}

func (p *fakePublisher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subjects)
}

// runTracker serves t until the test ends.
func runTracker(t *testing.T, tr *Tracker) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = tr.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHTTPSink(t *testing.T) {
	type received struct {
		path string
		body map[string]any
	}
	var mu sync.Mutex
	var got []received
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(data, &body)
		mu.Lock()
		got = append(got, received{r.URL.Path, body})
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tr := New(config.TrackingConfig{QueueSize: 8, Timeout: time.Second}, NewHTTPSink(srv.URL+"/", time.Second))
	runTracker(t, tr)

	st := filters.DefaultState()
	st.Query = "theme:HEALTH"
	tr.TrackSearch("user-1", st)
	tr.UpdatePreference("user-1", "theme", "dark")

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	if got[0].path != "/activity" {
		t.Errorf("first path = %q, want /activity", got[0].path)
	}
	if got[0].body["userId"] != "user-1" || got[0].body["activityType"] != ActivitySearch {
		t.Errorf("activity body = %v", got[0].body)
	}
	details, _ := got[0].body["details"].(map[string]any)
	if details["query"] != "theme:HEALTH" || details["dateRange"] != "2019-04-01 to 2019-04-30" ||
		details["bbox"] != "70.00000,15.00000,135.00000,55.00000" || details["searchType"] != "map_search" {
		t.Errorf("search details = %v", details)
	}
	if got[1].path != "/preferences" || got[1].body["preferenceKey"] != "theme" || got[1].body["preferenceValue"] != "dark" {
		t.Errorf("preference = %+v", got[1])
	}
	if _, ok := got[1].body["timestamp"].(string); !ok {
		t.Error("preference should carry a timestamp")
	}
}

func TestHTTPSinkFailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL, time.Second)
	if err := sink.SendActivity(context.Background(), &Activity{UserID: "u", ActivityType: "search"}); err == nil {
		t.Error("SendActivity() should report the 500")
	}

	pub := &fakePublisher{}
	tr := New(config.TrackingConfig{QueueSize: 4}, sink, NewNATSSink(pub, "worldsense.activity"))
	runTracker(t, tr)
	tr.TrackActivity("user-1", "search", nil)

	// The failing HTTP sink does not stop delivery to the next sink.
	waitFor(t, func() bool { return pub.count() == 1 })
}

func TestNATSSinkSubjects(t *testing.T) {
	pub := &fakePublisher{}
	tr := New(config.TrackingConfig{QueueSize: 8}, NewNATSSink(pub, "worldsense.activity"))
	runTracker(t, tr)

	tr.TrackMapInteraction("user-1", "moveend", map[string]any{"bbox": "1,2,3,4"})
	tr.UpdatePreference("user-1", "pageSize", 10)
	waitFor(t, func() bool { return pub.count() == 2 })

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if pub.subjects[0] != "worldsense.activity.map_interaction" || pub.subjects[1] != "worldsense.activity.preferences" {
		t.Errorf("subjects = %v", pub.subjects)
	}
	var a Activity
	if err := json.Unmarshal(pub.payloads[0], &a); err != nil {
		t.Fatal(err)
	}
	if a.Details["type"] != "moveend" || a.Details["bbox"] != "1,2,3,4" {
		t.Errorf("details = %v", a.Details)
	}
	if pub.messages[0].UUID == "" || pub.messages[0].UUID == pub.messages[1].UUID {
		t.Errorf("message ids = %q, %q", pub.messages[0].UUID, pub.messages[1].UUID)
	}
	if got := pub.messages[1].Metadata.Get("user_id"); got != "user-1" {
		t.Errorf("user_id metadata = %q", got)
	}
}

func TestAnonymousAndDisabledAreSkipped(t *testing.T) {
	pub := &fakePublisher{}
	tr := New(config.TrackingConfig{QueueSize: 8}, NewNATSSink(pub, "s"))

	tr.TrackActivity(auth.AnonymousSubject, "search", nil)
	tr.TrackActivity("", "search", nil)
	if len(tr.queue) != 0 {
		t.Errorf("queue length = %d, want 0", len(tr.queue))
	}

	var nilTracker *Tracker
	nilTracker.TrackSearch("user-1", filters.DefaultState())
	if nilTracker.Enabled() {
		t.Error("nil tracker should be disabled")
	}

	disabled, err := NewFromConfig(config.TrackingConfig{Enabled: false, BaseURL: "http://unused"})
	if err != nil {
		t.Fatal(err)
	}
	disabled.TrackActivity("user-1", "search", nil)
	if disabled.Enabled() || len(disabled.queue) != 0 {
		t.Error("disabled tracker should drop records")
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	tr := New(config.TrackingConfig{QueueSize: 2}, NewNATSSink(&fakePublisher{}, "s"))
	for i := 0; i < 5; i++ {
		tr.TrackActivity("user-1", "search", nil)
	}
	if len(tr.queue) != 2 {
		t.Errorf("queue length = %d, want 2", len(tr.queue))
	}
}

func TestServeFlushesOnShutdown(t *testing.T) {
	pub := &fakePublisher{}
	tr := New(config.TrackingConfig{QueueSize: 8, FlushTimeout: time.Second}, NewNATSSink(pub, "s"))
	tr.TrackActivity("user-1", "search", nil)
	tr.TrackActivity("user-1", "search", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tr.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if pub.count() != 2 {
		t.Errorf("published %d records on shutdown, want 2", pub.count())
	}

	if err := tr.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !pub.closed {
		t.Error("Close() should close the NATS publisher")
	}
}
