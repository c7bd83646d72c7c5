// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/worldsense/internal/config"
)

// Claims are the token claims WorldSense reads.
type Claims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 tokens.
type JWTManager struct {
	secret []byte
	issuer string
}

// NewJWTManager creates a token manager from the security config.
//
// Returns an error if JWTSecret is empty. Configuration validation already
// enforces the 32 character minimum.
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	return &JWTManager{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
	}, nil
}

// ValidateToken verifies the signature, algorithm, expiry and, when
// configured, the issuer of a token.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrExpiredCredentials, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrInvalidCredentials)
	}
	if claims.Subject == "" && claims.Username == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrInvalidCredentials)
	}
	// Subjects key per-user storage; control characters are never legitimate.
	if strings.ContainsFunc(claims.Subject+claims.Username, unicode.IsControl) {
		return nil, fmt.Errorf("%w: subject contains control characters", ErrInvalidCredentials)
	}
	return claims, nil
}

// SubjectFromClaims normalizes verified claims into an AuthSubject.
func SubjectFromClaims(claims *Claims) *AuthSubject {
	if claims == nil {
		return nil
	}
	s := &AuthSubject{
		ID:         claims.Subject,
		Username:   claims.Username,
		Email:      claims.Email,
		Issuer:     claims.Issuer,
		AuthMethod: AuthModeJWT,
	}
	if s.ID == "" {
		s.ID = claims.Username
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return s
}
