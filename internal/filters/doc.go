// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

// Package filters holds the dashboard filter state: date range, bounding box,
// free-text query and optional tone bounds.
//
// A Store is the single source of truth for one dashboard session. It has two
// producers, the toolbar (Update) and the map viewport (SetBboxFromViewport),
// and notifies subscribers with the provenance of every change so consumers
// can avoid echoing a change back to the producer that made it.
//
// Store is not safe for concurrent use. A dashboard session owns its store and
// applies every mutation from its event loop.
//
// Query strings are conjunctions of field:value clauses joined by " AND ":
//
//	filters.BuildQueryString(filters.Clauses{SearchType: "theme", SearchValue: "HEALTH", Country: "CN"})
//	// "theme:HEALTH AND country:CN"
package filters
