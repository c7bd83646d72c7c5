// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package auth

import (
	"context"
	"errors"
	"time"
)

// AuthMode represents the authentication strategy.
type AuthMode string

const (
	// AuthModeNone disables authentication
	AuthModeNone AuthMode = "none"

	// AuthModeJWT requires HS256 bearer tokens
	AuthModeJWT AuthMode = "jwt"
)

// AnonymousSubject is the subject ID used when authentication is disabled.
const AnonymousSubject = "anonymous"

// ParseAuthMode converts a string to AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch s {
	case "none", "":
		return AuthModeNone, nil
	case "jwt":
		return AuthModeJWT, nil
	default:
		return "", errors.New("invalid auth mode: " + s)
	}
}

// String returns the string representation of AuthMode.
func (m AuthMode) String() string {
	return string(m)
}

// Standard authentication errors
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates credentials have expired.
	ErrExpiredCredentials = errors.New("credentials expired")
)

// AuthSubject is an authenticated caller.
type AuthSubject struct {
	// ID is the token's 'sub' claim, or its username when 'sub' is absent.
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Issuer   string `json:"issuer,omitempty"`

	AuthMethod AuthMode `json:"auth_method"`
	IssuedAt   int64    `json:"issued_at,omitempty"`
	ExpiresAt  int64    `json:"expires_at,omitempty"`
}

// Anonymous returns the subject used when authentication is disabled.
func Anonymous() *AuthSubject {
	return &AuthSubject{ID: AnonymousSubject, Username: AnonymousSubject, AuthMethod: AuthModeNone}
}

// IsAnonymous reports whether s is the anonymous subject.
func (s *AuthSubject) IsAnonymous() bool {
	return s == nil || s.ID == AnonymousSubject
}

// IsExpired checks if the authentication has expired.
func (s *AuthSubject) IsExpired() bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return time.Now().Unix() > s.ExpiresAt
}

type contextKey string

// AuthSubjectContextKey is the context key for AuthSubject.
const AuthSubjectContextKey contextKey = "auth_subject"

// ContextWithSubject stores the caller in ctx.
func ContextWithSubject(ctx context.Context, s *AuthSubject) context.Context {
	return context.WithValue(ctx, AuthSubjectContextKey, s)
}

// SubjectFromContext returns the caller stored in ctx, or the anonymous
// subject when there is none.
func SubjectFromContext(ctx context.Context) *AuthSubject {
	if s, ok := ctx.Value(AuthSubjectContextKey).(*AuthSubject); ok && s != nil {
		return s
	}
	return Anonymous()
}
