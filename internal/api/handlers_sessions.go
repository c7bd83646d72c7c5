// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/worldsense/internal/filters"
	"github.com/tomtom215/worldsense/internal/logging"
	"github.com/tomtom215/worldsense/internal/models"
	"github.com/tomtom215/worldsense/internal/session"
	"github.com/tomtom215/worldsense/internal/validation"
	ws "github.com/tomtom215/worldsense/internal/websocket"
)

// CreateSessionRequest is the optional body of POST /sessions.
type CreateSessionRequest struct {
	Viewport *models.BBox   `json:"viewport,omitempty"`
	Filters  *filters.Patch `json:"filters,omitempty"`
}

// PageRequest is the body of POST /sessions/{id}/page.
type PageRequest struct {
	Page int `json:"page" validate:"min=1"`
}

// ViewportAck acknowledges a debounced viewport report.
type ViewportAck struct {
	Bounds    models.BBox `json:"bounds"`
	Debounced bool        `json:"debounced"`
}

// session resolves the {id} URL parameter for the calling subject.
func (h *Handler) session(r *http.Request) (*session.Session, error) {
	return h.sessions.Get(chi.URLParam(r, "id"), subjectID(r))
}

// respondSnapshot writes the session snapshot with the given status.
func (h *Handler) respondSnapshot(w http.ResponseWriter, r *http.Request, s *session.Session, status int) {
	snap, err := s.Snapshot(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	rw := NewResponseWriter(w, r)
	if status == http.StatusCreated {
		rw.Created(snap)
		return
	}
	rw.Success(snap)
}

// CreateSession handles POST /api/v1/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	// The viewport is clamped to the world, not validated: zoomed-out maps
	// report longitudes past 180.
	var req CreateSessionRequest
	if err := decodeJSON(r, &req, true); err != nil {
		respondServiceError(w, r, err)
		return
	}

	s, err := h.sessions.Create(r.Context(), subjectID(r), session.CreateOptions{
		Viewport: req.Viewport,
		Filters:  req.Filters,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.respondSnapshot(w, r, s, http.StatusCreated)
}

// GetSession handles GET /api/v1/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.respondSnapshot(w, r, s, http.StatusOK)
}

// DeleteSession handles DELETE /api/v1/sessions/{id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "id"), subjectID(r)); err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).NoContent()
}

// UpdateFilters handles PATCH /api/v1/sessions/{id}/filters.
func (h *Handler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var patch filters.Patch
	if err := decodeJSON(r, &patch, false); err != nil {
		respondServiceError(w, r, err)
		return
	}
	if patch.IsEmpty() {
		respondServiceError(w, r, validation.NewRequestValidationError(validation.FieldError{
			Field: "body", Tag: "required", Message: "at least one filter must be set",
		}))
		return
	}

	if err := s.UpdateFilters(r.Context(), patch); err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.respondSnapshot(w, r, s, http.StatusOK)
}

// Search handles POST /api/v1/sessions/{id}/query. The structured clauses
// are joined into the query string; running the same search twice refetches.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req session.SearchRequest
	if err := decodeAndValidate(r, &req, false); err != nil {
		respondServiceError(w, r, err)
		return
	}
	if err := s.Search(r.Context(), req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.respondSnapshot(w, r, s, http.StatusOK)
}

// ReportViewport handles POST /api/v1/sessions/{id}/viewport. The store is
// updated after the move-end debounce, so the response only acknowledges.
func (h *Handler) ReportViewport(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var bounds models.BBox
	if err := decodeJSON(r, &bounds, false); err != nil {
		respondServiceError(w, r, err)
		return
	}
	s.ReportViewport(bounds)
	NewResponseWriter(w, r).Accepted(ViewportAck{Bounds: bounds, Debounced: true})
}

// SetPage handles POST /api/v1/sessions/{id}/page.
func (h *Handler) SetPage(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req PageRequest
	if err := decodeAndValidate(r, &req, false); err != nil {
		respondServiceError(w, r, err)
		return
	}
	p, err := s.SetPage(r.Context(), req.Page)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(p)
}

// Refresh handles POST /api/v1/sessions/{id}/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if err := s.Refresh(r.Context()); err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Accepted(map[string]string{"status": "refreshing"})
}

// SessionWebSocket handles GET /api/v1/sessions/{id}/ws. The connection
// receives the session's pushes and may send moveend frames.
func (h *Handler) SessionWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		NewResponseWriter(w, r).ServiceUnavailable("WebSocket service unavailable")
		return
	}
	s, err := h.session(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn, s.ID(), s.HandleInbound)
	h.wsHub.Register <- client
	client.Start()
}
