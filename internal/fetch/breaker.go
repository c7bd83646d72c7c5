// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package fetch

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/worldsense/internal/logging"
	"github.com/tomtom215/worldsense/internal/metrics"
)

// breakerName labels breaker metrics and logs.
const breakerName = "gdelt-api"

// abandonedError wraps a failure caused by the caller's context ending. The
// breaker counts it as a success since the upstream was never at fault.
type abandonedError struct {
	err error
}

func (e *abandonedError) Error() string { return e.err.Error() }

func (e *abandonedError) Unwrap() error { return e.err }

// newBreaker trips after at least 10 requests with a failure ratio of 60% or
// more, then probes again after 30 seconds. Client errors (4xx other than 429)
// count as successes: the upstream answered.
func newBreaker() *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= 0.6 {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var abandoned *abandonedError
			if errors.As(err, &abandoned) {
				return true
			}
			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				return !httpErr.Temporary()
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})
}

// executeBreaker runs fn through cb, translating rejections to ErrCircuitOpen.
func executeBreaker(cb *gobreaker.CircuitBreaker[[]byte], fn func() ([]byte, error)) ([]byte, error) {
	body, err := cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			return nil, ErrCircuitOpen
		}
		var abandoned *abandonedError
		if errors.As(err, &abandoned) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "abandoned").Inc()
			return nil, err
		}
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	return body, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
