// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tomtom215/worldsense/internal/logging"
)

// DefaultSlowRequest is the slow-request threshold used when none is given.
const DefaultSlowRequest = time.Second

// AccessLog logs every request at debug level through the request's logging
// context. Requests slower than slow, and server errors, are logged at warn.
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequest
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			status := statusOf(ww)
			log := logging.Ctx(r.Context())
			ev := log.Debug()
			msg := "Request completed"
			switch {
			case status >= http.StatusInternalServerError:
				ev = log.Warn()
				msg = "Request failed"
			case duration > slow:
				ev = log.Warn()
				msg = "Slow request detected"
			}
			ev.Str("method", r.Method).
				Str("route", RoutePattern(r)).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", duration).
				Msg(msg)
		})
	}
}
