// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/worldsense/internal/filters"
	"github.com/tomtom215/worldsense/internal/likes"
	"github.com/tomtom215/worldsense/internal/logging"
	"github.com/tomtom215/worldsense/internal/session"
	"github.com/tomtom215/worldsense/internal/validation"
)

// ErrBodyTooLarge is returned for request bodies over maxBodyBytes.
var ErrBodyTooLarge = errors.New("request body too large")

// respondServiceError maps a domain error to its API status and code.
// Unrecognised errors are logged and reported as 500 without detail.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)

	var filterErr *filters.ValidationError
	var reqErr *validation.RequestValidationError
	switch {
	case errors.As(err, &filterErr):
		rw.ValidationError(filterErr.Error(), map[string]string{
			"field":  filterErr.Field,
			"reason": filterErr.Reason,
		})
	case errors.As(err, &reqErr):
		rw.ValidationError("request validation failed", reqErr.Details())
	case errors.Is(err, session.ErrInvalidPage), errors.Is(err, likes.ErrInvalidLike):
		rw.ValidationError(err.Error(), nil)
	case errors.Is(err, ErrBodyTooLarge):
		rw.Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest, err.Error())
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionClosed):
		rw.NotFound("session not found")
	case errors.Is(err, likes.ErrLikeNotFound):
		rw.NotFound("like not found")
	case errors.Is(err, likes.ErrAlreadyLiked):
		rw.Conflict(err.Error())
	case errors.Is(err, session.ErrTooManySessions):
		rw.TooManyRequests("session limit reached")
	case errors.Is(err, likes.ErrStoreClosed):
		rw.ServiceUnavailable("likes store unavailable")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		rw.ServiceUnavailable("request cancelled")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", sanitizeLogValue(r.URL.Path)).Msg("API error")
		rw.InternalError("internal server error")
	}
}
