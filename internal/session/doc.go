// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

/*
Package session holds one dashboard session per open browser tab.

A Session owns a filters.Store, binds it to the client's reported map
viewport, drives the three panel fetches through a fetch.Orchestrator and
pushes every change to the session's websocket topic.

# Concurrency

The filter store is not safe for concurrent use, so every mutation runs on
the session's event loop. Callers submit work with Do; the HTTP handlers,
the websocket read pump and the move-end debouncer all go through it.
Panel results arrive on fetch goroutines and are cached under a separate
mutex so snapshots never wait on the orchestrator.

# Lifecycle

The Manager creates sessions, scopes them to their owner and reaps the ones
that have been idle longer than the configured TTL. Serve runs the reaper
and is meant to be supervised:

	mgr := session.NewManager(cfg, fetcher, hub, tracker)
	sup.Add(mgr)
*/
package session
