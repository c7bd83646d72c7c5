// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package tracking

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/tomtom215/worldsense/internal/auth"
	"github.com/tomtom215/worldsense/internal/config"
	"github.com/tomtom215/worldsense/internal/filters"
	"github.com/tomtom215/worldsense/internal/logging"
	"github.com/tomtom215/worldsense/internal/metrics"
)

const defaultQueueSize = 256

// Tracker queues records for asynchronous delivery. A nil *Tracker, or one
// without sinks, discards everything.
type Tracker struct {
	sinks        []Sink
	queue        chan record
	timeout      time.Duration
	flushTimeout time.Duration
	now          func() time.Time
}

// New returns a tracker delivering to sinks.
func New(cfg config.TrackingConfig, sinks ...Sink) *Tracker {
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Tracker{
		sinks:        sinks,
		queue:        make(chan record, size),
		timeout:      cfg.Timeout,
		flushTimeout: cfg.FlushTimeout,
		now:          time.Now,
	}
}

// NewFromConfig builds the sinks named by cfg. A disabled config returns a
// tracker that drops everything.
func NewFromConfig(cfg config.TrackingConfig) (*Tracker, error) {
	if !cfg.Enabled {
		return New(cfg), nil
	}
	var sinks []Sink
	if cfg.BaseURL != "" {
		sinks = append(sinks, NewHTTPSink(cfg.BaseURL, cfg.Timeout))
	}
	if cfg.NATSURL != "" {
		ns, err := ConnectNATS(cfg.NATSURL, cfg.Subject, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("tracking sink: %w", err)
		}
		sinks = append(sinks, ns)
	}
	if len(sinks) == 0 {
		logging.Warn().Msg("Tracking enabled without a base URL or NATS URL; records will be dropped")
	}
	return New(cfg, sinks...), nil
}

// Enabled reports whether records are delivered anywhere.
func (t *Tracker) Enabled() bool {
	return t != nil && len(t.sinks) > 0
}

// TrackActivity records an activity for a signed-in user.
func (t *Tracker) TrackActivity(userID, activityType string, details map[string]any) {
	if !t.Enabled() || !tracked(userID) {
		return
	}
	t.enqueue(record{activity: &Activity{
		UserID:       userID,
		ActivityType: activityType,
		Details:      details,
		Timestamp:    t.now().UTC(),
	}})
}

// UpdatePreference records a preference change for a signed-in user.
func (t *Tracker) UpdatePreference(userID, key string, value any) {
	if !t.Enabled() || !tracked(userID) {
		return
	}
	t.enqueue(record{preference: &Preference{
		UserID:          userID,
		PreferenceKey:   key,
		PreferenceValue: value,
		Timestamp:       t.now().UTC(),
	}})
}

// TrackSearch records the filters a search ran with.
func (t *Tracker) TrackSearch(userID string, st filters.State) {
	t.TrackActivity(userID, ActivitySearch, map[string]any{
		"query":      st.Query,
		"dateRange":  st.DateFrom + " to " + st.DateTo,
		"bbox":       st.BBoxParam(),
		"searchType": "map_search",
	})
}

// TrackMapInteraction records a map interaction such as a pan or zoom.
func (t *Tracker) TrackMapInteraction(userID, interactionType string, details map[string]any) {
	d := make(map[string]any, len(details)+1)
	maps.Copy(d, details)
	d["type"] = interactionType
	t.TrackActivity(userID, ActivityMapInteraction, d)
}

func tracked(userID string) bool {
	return userID != "" && userID != auth.AnonymousSubject
}

func (t *Tracker) enqueue(r record) {
	select {
	case t.queue <- r:
	default:
		metrics.TrackingEvents.WithLabelValues("queue", "dropped").Inc()
		logging.Debug().Str("kind", r.kind()).Msg("Tracking queue full, record dropped")
	}
}

// Serve delivers queued records until ctx is cancelled, then flushes what
// is left within the flush timeout.
func (t *Tracker) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			t.flush()
			return ctx.Err()
		case r := <-t.queue:
			t.deliver(ctx, r)
		}
	}
}

func (t *Tracker) flush() {
	timeout := t.flushTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for {
		select {
		case r := <-t.queue:
			t.deliver(ctx, r)
		default:
			return
		}
		if ctx.Err() != nil {
			logging.Warn().Int("remaining", len(t.queue)).Msg("Tracking flush timed out")
			return
		}
	}
}

func (t *Tracker) deliver(ctx context.Context, r record) {
	for _, s := range t.sinks {
		sendCtx := ctx
		var cancel context.CancelFunc = func() {}
		if t.timeout > 0 {
			sendCtx, cancel = context.WithTimeout(ctx, t.timeout)
		}
		var err error
		if r.preference != nil {
			err = s.SendPreference(sendCtx, r.preference)
		} else {
			err = s.SendActivity(sendCtx, r.activity)
		}
		cancel()

		if err != nil {
			metrics.TrackingEvents.WithLabelValues(s.Name(), "failed").Inc()
			if !errors.Is(err, context.Canceled) {
				logging.Warn().Err(err).Str("sink", s.Name()).Str("kind", r.kind()).Msg("Tracking delivery failed")
			}
			continue
		}
		metrics.TrackingEvents.WithLabelValues(s.Name(), "delivered").Inc()
	}
}

// Close releases every sink.
func (t *Tracker) Close() error {
	if t == nil {
		return nil
	}
	var errs []error
	for _, s := range t.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// String implements fmt.Stringer for suture logging.
func (t *Tracker) String() string {
	return "tracking-worker"
}
