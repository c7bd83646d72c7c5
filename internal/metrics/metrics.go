// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

// Package metrics declares the Prometheus metrics exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream GDELT API

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worldsense_upstream_request_duration_seconds",
			Help:    "Duration of upstream GDELT API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"}, // status: success, http_error, network_error, rejected
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worldsense_upstream_retries_total",
			Help: "Total number of retried upstream requests",
		},
		[]string{"endpoint"},
	)

	// Fetch orchestration

	FetchesIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worldsense_fetches_issued_total",
			Help: "Total number of panel fetches issued",
		},
		[]string{"endpoint"},
	)

	FetchResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worldsense_fetch_results_total",
			Help: "Panel fetch resolutions applied to a session",
		},
		[]string{"endpoint", "status"}, // status: success, error
	)

	StaleResponsesDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worldsense_stale_responses_discarded_total",
			Help: "Fetch resolutions dropped because a newer request for the endpoint was issued",
		},
		[]string{"endpoint"},
	)

	// Circuit breaker

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Sessions and realtime

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "worldsense_active_sessions",
			Help: "Number of open dashboard sessions",
		},
	)

	SessionFilterUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worldsense_filter_updates_total",
			Help: "Filter state updates by source and outcome",
		},
		[]string{"source", "result"}, // source: toolbar, viewport; result: applied, noop, rejected
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Number of active WebSocket connections",
		},
	)

	WebSocketMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
		[]string{"type"},
	)

	// Likes and tracking

	LikesOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worldsense_likes_operations_total",
			Help: "Liked-event store operations",
		},
		[]string{"operation", "result"},
	)

	TrackingEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worldsense_tracking_events_total",
			Help: "Activity tracking events by sink and outcome",
		},
		[]string{"sink", "result"}, // result: delivered, failed, dropped
	)

	// API

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)
)

// RecordUpstreamRequest records one upstream request.
func RecordUpstreamRequest(endpoint, status string, duration time.Duration) {
	UpstreamRequestDuration.WithLabelValues(endpoint, status).Observe(duration.Seconds())
}

// RecordFetchResult records an applied panel resolution.
func RecordFetchResult(endpoint string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	FetchResults.WithLabelValues(endpoint, status).Inc()
}

// RecordFilterUpdate records a filter store mutation attempt.
func RecordFilterUpdate(source, result string) {
	SessionFilterUpdates.WithLabelValues(source, result).Inc()
}

// RecordAPIRequest records one served API request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}
