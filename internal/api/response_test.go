// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/worldsense/internal/logging"
)

func TestResponseWriter_Success(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	r = r.WithContext(logging.ContextWithRequestID(r.Context(), "req-1"))

	NewResponseWriter(w, r).Success(map[string]string{"message": "hello"})

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q", got)
	}

	var response APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !response.Success || response.Error != nil {
		t.Errorf("response = %+v", response)
	}
	if response.Meta == nil || response.Meta.Timestamp.IsZero() {
		t.Fatal("Expected Meta with a timestamp")
	}
	if response.Meta.RequestID != "req-1" {
		t.Errorf("RequestID = %q, want req-1", response.Meta.RequestID)
	}
}

func TestResponseWriter_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		write  func(*ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(rw *ResponseWriter) { rw.BadRequest("x") }, http.StatusBadRequest, ErrCodeBadRequest},
		{"unauthorized", func(rw *ResponseWriter) { rw.Unauthorized("x") }, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"not found", func(rw *ResponseWriter) { rw.NotFound("x") }, http.StatusNotFound, ErrCodeNotFound},
		{"conflict", func(rw *ResponseWriter) { rw.Conflict("x") }, http.StatusConflict, ErrCodeConflict},
		{"too many", func(rw *ResponseWriter) { rw.TooManyRequests("x") }, http.StatusTooManyRequests, ErrCodeTooManyRequests},
		{"internal", func(rw *ResponseWriter) { rw.InternalError("x") }, http.StatusInternalServerError, ErrCodeInternalError},
		{"unavailable", func(rw *ResponseWriter) { rw.ServiceUnavailable("x") }, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"validation", func(rw *ResponseWriter) { rw.ValidationError("x", map[string]string{"field": "page"}) }, http.StatusBadRequest, ErrCodeValidationError},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			tt.write(NewResponseWriter(w, httptest.NewRequest(http.MethodGet, "/", nil)))
			expectErrorCode(t, w, tt.status, tt.code)
		})
	}
}

func TestResponseWriter_NoContent(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()
	NewResponseWriter(w, httptest.NewRequest(http.MethodDelete, "/", nil)).NoContent()
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("status = %d body = %q", w.Code, w.Body.String())
	}
}
