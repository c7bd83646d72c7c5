// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/worldsense/internal/logging"
	"github.com/tomtom215/worldsense/internal/metrics"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{"generates when missing", "", false},
		{"preserves upstream id", "req-12345", true},
		{"replaces oversized id", strings.Repeat("x", 200), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctxID, corrID string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = GetRequestID(r.Context())
				corrID = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got != ctxID {
				t.Errorf("header %q != context %q", got, ctxID)
			}
			if corrID == "" {
				t.Error("no correlation id in context")
			}
			if tt.wantSame {
				if got != tt.incoming {
					t.Errorf("id = %q, want %q", got, tt.incoming)
				}
				return
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Errorf("generated id %q is not a UUID: %v", got, err)
			}
		})
	}
}

func TestPrometheusMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.CollectAndCount(metrics.APIRequestDuration)
	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	// Three different IDs share one series.
	if after := testutil.CollectAndCount(metrics.APIRequestDuration); after != before+1 {
		t.Errorf("series count went from %d to %d, want +1", before, after)
	}
	if got := testutil.ToFloat64(metrics.APIActiveRequests); got != 0 {
		t.Errorf("active requests = %v after completion", got)
	}
}

func TestRoutePattern_Unmatched(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	if got := RoutePattern(req); got != unmatchedRoute {
		t.Errorf("RoutePattern = %q, want %q", got, unmatchedRoute)
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "info", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	tests := []struct {
		name    string
		status  int
		delay   time.Duration
		wantMsg string
	}{
		{"server error", http.StatusBadGateway, 0, "Request failed"},
		{"slow request", http.StatusOK, 20 * time.Millisecond, "Slow request detected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			h := AccessLog(5 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(tt.delay)
				w.WriteHeader(tt.status)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", nil))
			if !strings.Contains(buf.String(), tt.wantMsg) {
				t.Errorf("log %q does not contain %q", buf.String(), tt.wantMsg)
			}
		})
	}
}
