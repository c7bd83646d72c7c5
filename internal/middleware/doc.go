// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

/*
Package middleware provides HTTP middleware shared by every API route.

Key Components:

  - RequestID: UUID request IDs propagated into the logging context
  - PrometheusMetrics: request duration and in-flight instrumentation
  - AccessLog: structured request logging with a slow-request warning

All middleware has the chi signature func(http.Handler) http.Handler and
wraps the response with chi's WrapResponseWriter, so websocket upgrades
(which need http.Hijacker) pass through untouched.

Route labels come from the matched chi pattern, not the raw path, so
session IDs never become metric label values:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(time.Second))
*/
package middleware
