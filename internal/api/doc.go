// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

/*
Package api provides the HTTP REST API layer for WorldSense.

Every dashboard a browser opens is a server-side session (package session).
The API creates sessions, forwards toolbar and map input to them, and streams
their panel updates over a per-session WebSocket.

Key Components:

  - Router: Chi route configuration and middleware stack
  - Handler: request handlers split by concern (sessions, likes, health)
  - ResponseWriter: the standard JSON envelope with request metadata
  - respondServiceError: maps domain errors to status codes and error codes

Endpoints:

	GET    /api/v1/health/live              liveness
	GET    /api/v1/health/ready             readiness (likes store, upstream breaker)
	GET    /metrics                         Prometheus exposition

	POST   /api/v1/sessions                 create a session (optional viewport and filters)
	GET    /api/v1/sessions/{id}            snapshot: filters, pagination, panels, summary
	DELETE /api/v1/sessions/{id}            close a session
	PATCH  /api/v1/sessions/{id}/filters    toolbar filter patch
	POST   /api/v1/sessions/{id}/query      structured search
	POST   /api/v1/sessions/{id}/viewport   debounced map move-end report
	POST   /api/v1/sessions/{id}/page       change the search page
	POST   /api/v1/sessions/{id}/refresh    refetch every panel
	GET    /api/v1/sessions/{id}/ws         session push channel

	GET    /api/v1/likes                    list the caller's liked events
	PUT    /api/v1/likes                    like an event
	DELETE /api/v1/likes/{key}              unlike an event
	PUT    /api/v1/preferences              forward a preference to tracking
	GET    /api/v1/countries                country picker options

Response Format:

	{
	    "success": true,
	    "data": {...},
	    "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}
	}

Errors carry {"code", "message", "details"} under "error" with success false.

Authentication:

With auth_mode "jwt" every /api/v1 route except health requires a bearer
token, cookie, or access_token query parameter (the WebSocket handshake uses
the latter). Sessions and likes are scoped to the token subject; another
subject's session answers 404.
*/
package api
