// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

/*
Package main is the entry point for the WorldSense server.

WorldSense serves interactive GDELT event dashboards. Each browser dashboard
is a server-side session that owns its filter state, drives the three panel
fetches (map, stats, search) against the GDELT REST API, and pushes panel
and summary updates over a WebSocket.

Component initialization order:

 1. Configuration: koanf v2 (defaults, optional YAML file, environment)
 2. Logging: zerolog with JSON or console output
 3. Likes store: BadgerDB or in-memory
 4. Tracking: optional HTTP and NATS sinks
 5. Upstream client: rate limited, retrying, optional circuit breaker
 6. Session manager and WebSocket hub
 7. Authentication: none or JWT
 8. Supervisor tree: suture v4 (see package supervisor)
 9. HTTP server: Chi router with the middleware stack

SIGINT and SIGTERM cancel the tree: the HTTP server drains, every session is
closed (its WebSocket clients receive session.closed), tracking drains, and
the likes store is closed last.

Configuration is read from CONFIG_PATH (a YAML file) and environment
variables such as UPSTREAM_BASE_URL, AUTH_MODE, JWT_SECRET, LIKES_STORE,
LIKES_PATH and TRACKING_ENABLED. See package config for the full list.
*/
package main
