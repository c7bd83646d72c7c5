// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/worldsense/internal/config"
	"github.com/tomtom215/worldsense/internal/likes"
	"github.com/tomtom215/worldsense/internal/logging"
	"github.com/tomtom215/worldsense/internal/session"
	"github.com/tomtom215/worldsense/internal/tracking"
	ws "github.com/tomtom215/worldsense/internal/websocket"
)

// UpstreamStatus reports the health of the GDELT API client.
type UpstreamStatus interface {
	BreakerState() string
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, websocket upgrader (this file)
//   - handlers_helpers.go: body decoding and request helpers
//   - handlers_health.go: liveness and readiness probes
//   - handlers_sessions.go: dashboard session endpoints
//   - handlers_likes.go: liked events and preferences
type Handler struct {
	sessions  *session.Manager
	likes     likes.Store
	wsHub     *ws.Hub
	tracker   *tracking.Tracker
	upstream  UpstreamStatus
	config    *config.Config
	startTime time.Time
}

// NewHandler creates the API handler. tracker and upstream may be nil.
//
// Example:
//
//	handler := api.NewHandler(cfg, sessions, likeStore, hub, tracker, client)
//	router := api.NewRouter(handler, authMiddleware, api.NewChiMiddlewareFromConfig(&cfg.Security))
//	http.ListenAndServe(":3857", router.SetupChi())
func NewHandler(cfg *config.Config, sessions *session.Manager, likeStore likes.Store, wsHub *ws.Hub, tracker *tracking.Tracker, upstream UpstreamStatus) *Handler {
	return &Handler{
		sessions:  sessions,
		likes:     likeStore,
		wsHub:     wsHub,
		tracker:   tracker,
		upstream:  upstream,
		config:    cfg,
		startTime: time.Now(),
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout against slow clients.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Browsers always send Origin on websocket handshakes; an empty one
	// would bypass CORS entirely.
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowedOrigin := range h.config.Security.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
