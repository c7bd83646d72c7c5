// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/worldsense/internal/logging"
)

// readyProbeOwner is never a real subject; listing its likes only proves the
// store answers.
const readyProbeOwner = "\x00ready"

// HealthStatus is the readiness payload.
type HealthStatus struct {
	Status         string  `json:"status"`
	LikesStore     bool    `json:"likes_store"`
	UpstreamState  string  `json:"upstream_breaker"`
	ActiveSessions int     `json:"active_sessions"`
	WSClients      int     `json:"websocket_clients"`
	Uptime         float64 `json:"uptime_seconds"`
}

// HealthLive handles GET /api/v1/health/live. It only proves the process
// serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready. The likes store must answer;
// the upstream breaker state is informational since an open breaker heals
// on its own.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:        "ready",
		UpstreamState: "unknown",
		Uptime:        time.Since(h.startTime).Seconds(),
	}
	if h.upstream != nil {
		status.UpstreamState = h.upstream.BreakerState()
	}
	if h.sessions != nil {
		status.ActiveSessions = h.sessions.Count()
	}
	if h.wsHub != nil {
		status.WSClients = h.wsHub.GetClientCount()
	}

	if h.likes != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		_, err := h.likes.List(ctx, readyProbeOwner)
		cancel()
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check: likes store unavailable")
		} else {
			status.LikesStore = true
		}
	}

	rw := NewResponseWriter(w, r)
	if !status.LikesStore {
		status.Status = "not_ready"
		rw.writeJSON(http.StatusServiceUnavailable, APIResponse{Success: false, Data: status, Meta: rw.meta(nil)})
		return
	}
	rw.Success(status)
}
