// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityLogger logs rejected credentials without echoing them.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger returns a security logger on the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{logger: WithComponent("auth")}
}

// LogTokenRejected records a bearer token that failed verification.
func (l *SecurityLogger) LogTokenRejected(ip, userAgent, reason string) {
	l.logger.Warn().
		Str("event", "token_rejected").
		Str("provider", "jwt").
		Str("ip", ip).
		Str("user_agent", truncateString(userAgent, 100)).
		Str("error", sanitizeReason(reason)).
		Msg("Bearer token rejected")
}

// SanitizeSessionID masks a session ID, keeping the first and last 4 characters.
func SanitizeSessionID(sessionID string) string {
	return mask(sessionID, 12)
}

// SanitizeUserID masks a user ID, keeping the first and last 4 characters.
func SanitizeUserID(userID string) string {
	return mask(userID, 8)
}

func mask(s string, minLen int) string {
	if s == "" {
		return ""
	}
	if len(s) <= minLen {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// sanitizeReason drops verification errors that may quote the credential.
func sanitizeReason(reason string) string {
	lower := strings.ToLower(reason)
	for _, pattern := range []string{"secret", "bearer", "authorization"} {
		if strings.Contains(lower, pattern) {
			return "authentication error"
		}
	}
	return truncateString(reason, 200)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
