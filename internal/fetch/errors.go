// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCircuitOpen is returned while the upstream circuit breaker rejects calls.
var ErrCircuitOpen = errors.New("upstream temporarily unavailable (circuit open)")

// HTTPError is a non-2xx upstream response.
type HTTPError struct {
	Endpoint   Endpoint
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s request failed: HTTP %d %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Temporary reports whether retrying could succeed.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// NetworkError is a transport failure or an undecodable response body.
type NetworkError struct {
	Endpoint Endpoint
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies err for panel display and metrics.
func ErrorKind(err error) string {
	var httpErr *HTTPError
	var netErr *NetworkError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.As(err, &httpErr):
		return "http_error"
	case errors.As(err, &netErr):
		return "network_error"
	default:
		return "error"
	}
}
