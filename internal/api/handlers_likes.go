// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/worldsense/internal/aggregate"
	"github.com/tomtom215/worldsense/internal/models"
)

// LikeRequest is the body of PUT /likes.
type LikeRequest struct {
	EventID   string  `json:"event_id" validate:"required,max=128"`
	Tone      float64 `json:"tone" validate:"gte=-100,lte=100"`
	Lon       float64 `json:"lon" validate:"longitude"`
	Lat       float64 `json:"lat" validate:"latitude"`
	Country   string  `json:"country,omitempty" validate:"max=100"`
	Theme     string  `json:"theme,omitempty" validate:"max=200"`
	URL       string  `json:"url,omitempty" validate:"omitempty,url,max=2048"`
	Timestamp string  `json:"timestamp,omitempty" validate:"max=64"`
}

// PreferenceRequest is the body of PUT /preferences.
type PreferenceRequest struct {
	Key   string      `json:"preferenceKey" validate:"required,max=64"`
	Value interface{} `json:"preferenceValue"`
}

// ListLikes handles GET /api/v1/likes.
func (h *Handler) ListLikes(w http.ResponseWriter, r *http.Request) {
	list, err := h.likes.List(r.Context(), subjectID(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	n := len(list)
	NewResponseWriter(w, r).SuccessWithMeta(list, &APIMeta{Count: &n})
}

// LikeEvent handles PUT /api/v1/likes. Liking an event twice is a conflict.
func (h *Handler) LikeEvent(w http.ResponseWriter, r *http.Request) {
	var req LikeRequest
	if err := decodeAndValidate(r, &req, false); err != nil {
		respondServiceError(w, r, err)
		return
	}

	owner := subjectID(r)
	like := &models.LikedEvent{
		EventID:   req.EventID,
		Tone:      req.Tone,
		Lon:       req.Lon,
		Lat:       req.Lat,
		Country:   req.Country,
		Theme:     aggregate.ThemeLabel(req.Theme),
		URL:       req.URL,
		Timestamp: req.Timestamp,
	}
	if err := h.likes.Put(r.Context(), owner, like); err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.tracker.TrackActivity(owner, "like", map[string]any{"eventId": like.EventID, "key": like.Key})
	NewResponseWriter(w, r).Created(like)
}

// UnlikeEvent handles DELETE /api/v1/likes/{key}.
func (h *Handler) UnlikeEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.likes.Delete(r.Context(), subjectID(r), chi.URLParam(r, "key")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).NoContent()
}

// UpdatePreference handles PUT /api/v1/preferences. Delivery to the
// tracking service is asynchronous and best effort.
func (h *Handler) UpdatePreference(w http.ResponseWriter, r *http.Request) {
	var req PreferenceRequest
	if err := decodeAndValidate(r, &req, false); err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.tracker.UpdatePreference(subjectID(r), req.Key, req.Value)
	NewResponseWriter(w, r).Accepted(map[string]bool{"tracked": h.tracker.Enabled()})
}

// Countries handles GET /api/v1/countries for the toolbar country picker.
func (h *Handler) Countries(w http.ResponseWriter, r *http.Request) {
	list := aggregate.Countries()
	n := len(list)
	NewResponseWriter(w, r).SuccessWithMeta(list, &APIMeta{Count: &n})
}
