// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/worldsense/internal/auth"
	"github.com/tomtom215/worldsense/internal/validation"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// decodeJSON reads a bounded JSON body into dst. Unknown fields are
// rejected. An empty body leaves dst untouched when allowEmpty is set.
func decodeJSON(r *http.Request, dst interface{}, allowEmpty bool) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return ErrBodyTooLarge
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		if allowEmpty {
			return nil
		}
		return validation.NewRequestValidationError(validation.FieldError{
			Field: "body", Tag: "required", Message: "request body is required",
		})
	}

	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return validation.NewRequestValidationError(validation.FieldError{
			Field: "body", Tag: "json", Message: "malformed JSON: " + err.Error(),
		})
	}
	return nil
}

// decodeAndValidate decodes the body and runs struct validation on dst.
func decodeAndValidate(r *http.Request, dst interface{}, allowEmpty bool) error {
	if err := decodeJSON(r, dst, allowEmpty); err != nil {
		return err
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}

// subjectID is the owner of sessions and likes created by the request.
func subjectID(r *http.Request) string {
	return auth.SubjectFromContext(r.Context()).ID
}
