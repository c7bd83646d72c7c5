// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

/*
Package supervisor provides process supervision for WorldSense using suture v4.

Every long-running component is a suture.Service placed in one of three
layers:

	RootSupervisor ("worldsense")
	├── StorageSupervisor ("storage-layer")
	│   ├── LikesGCService (badger store only)
	│   └── tracking.Tracker (when tracking is enabled)
	├── SessionSupervisor ("session-layer")
	│   ├── websocket.Hub
	│   └── session.Manager (idle reaper)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with suture's backoff, and failures are counted
per layer. Cancelling the context passed to Serve stops every service;
ShutdownTimeout bounds each one and UnstoppedServiceReport names any that
hung.

Supervisor events (restarts, backoff, stop timeouts) are logged through
sutureslog into the zerolog-backed slog.Logger from logging.NewSlogLogger.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddSessionService(hub)
	tree.AddSessionService(sessions)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	return tree.Serve(ctx)
*/
package supervisor
