// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

// Package services adapts components without a context-aware run loop to
// suture.Service: the HTTP server (ListenAndServe/Shutdown) and the likes
// store's periodic value log GC. Components that already implement
// Serve(ctx) error, such as the websocket hub, the session manager and the
// tracker, are added to the tree directly.
package services
