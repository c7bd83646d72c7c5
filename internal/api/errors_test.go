// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/worldsense/internal/filters"
	"github.com/tomtom215/worldsense/internal/likes"
	"github.com/tomtom215/worldsense/internal/session"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"filter validation", &filters.ValidationError{Field: "bbox", Reason: "west > east"}, http.StatusBadRequest, ErrCodeValidationError},
		{"invalid page", session.ErrInvalidPage, http.StatusBadRequest, ErrCodeValidationError},
		{"invalid like", fmt.Errorf("%w: missing event id", likes.ErrInvalidLike), http.StatusBadRequest, ErrCodeValidationError},
		{"body too large", ErrBodyTooLarge, http.StatusRequestEntityTooLarge, ErrCodeBadRequest},
		{"session not found", session.ErrSessionNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"session closed", session.ErrSessionClosed, http.StatusNotFound, ErrCodeNotFound},
		{"like not found", likes.ErrLikeNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"already liked", likes.ErrAlreadyLiked, http.StatusConflict, ErrCodeConflict},
		{"too many sessions", session.ErrTooManySessions, http.StatusTooManyRequests, ErrCodeTooManyRequests},
		{"store closed", likes.ErrStoreClosed, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respondServiceError(w, httptest.NewRequest(http.MethodGet, "/x", nil), tt.err)
			expectErrorCode(t, w, tt.status, tt.code)
		})
	}
}

func TestRespondServiceError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	respondServiceError(w, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("password=hunter2"))
	env := decodeEnvelope(t, w, nil)
	if env.Error.Message != "internal server error" {
		t.Errorf("message = %q", env.Error.Message)
	}
}
