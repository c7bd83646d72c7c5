// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package auth

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/worldsense/internal/config"
	"github.com/tomtom215/worldsense/internal/logging"
)

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Middleware attaches the caller's AuthSubject to each request.
type Middleware struct {
	mode    AuthMode
	jwt     *JWTManager
	secLog  *logging.SecurityLogger
	onError ErrorWriter
}

// NewMiddleware builds the middleware for cfg.AuthMode. A nil onError
// writes a minimal JSON error body.
func NewMiddleware(cfg *config.SecurityConfig, onError ErrorWriter) (*Middleware, error) {
	mode, err := ParseAuthMode(cfg.AuthMode)
	if err != nil {
		return nil, err
	}
	if onError == nil {
		onError = writeJSONError
	}
	m := &Middleware{
		mode:    mode,
		secLog:  logging.NewSecurityLogger(),
		onError: onError,
	}
	if mode == AuthModeJWT {
		if m.jwt, err = NewJWTManager(cfg); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Mode returns the configured auth mode.
func (m *Middleware) Mode() AuthMode {
	return m.mode
}

// Authenticate resolves the caller. In mode none every request is
// anonymous; in mode jwt a missing or invalid token is rejected with 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == AuthModeNone {
			next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), Anonymous())))
			return
		}

		token, err := extractToken(r)
		if err != nil {
			m.onError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
			return
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			m.secLog.LogTokenRejected(clientIP(r), r.UserAgent(), err.Error())
			msg := "invalid token"
			if errors.Is(err, ErrExpiredCredentials) {
				msg = "token expired"
			}
			m.onError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", msg)
			return
		}

		subject := SubjectFromClaims(claims)
		logging.Ctx(r.Context()).Debug().
			Str("user_id", logging.SanitizeUserID(subject.ID)).
			Msg("Request authenticated")
		next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), subject)))
	})
}

// extractToken reads the bearer token from the Authorization header, the
// "token" cookie, or the access_token query parameter, in that order.
func extractToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", fmt.Errorf("invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	if token := r.URL.Query().Get("access_token"); token != "" {
		return token, nil
	}
	return "", ErrNoCredentials
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSONError(w http.ResponseWriter, _ *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck // best effort error body
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	})
}
