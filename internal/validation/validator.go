// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

// Package validation wraps go-playground/validator for API request structs.
//
// Field names in errors use the struct's json tag so clients can map an error
// back to the input they sent:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respond.ValidationError(w, r, verr)
//	    return
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/worldsense/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one failed constraint.
type FieldError struct {
	Field   string      `json:"field"`
	Tag     string      `json:"tag"`
	Param   string      `json:"param,omitempty"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

// RequestValidationError aggregates every failed constraint of a request.
type RequestValidationError struct {
	errors []FieldError
}

// NewRequestValidationError builds an error from pre-computed field errors.
func NewRequestValidationError(fields ...FieldError) *RequestValidationError {
	return &RequestValidationError{errors: fields}
}

// Errors returns the individual field errors.
func (ve *RequestValidationError) Errors() []FieldError {
	return ve.errors
}

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i, fe := range ve.errors {
		messages[i] = fe.Message
	}
	return strings.Join(messages, "; ")
}

// Details returns a map suitable for the API error envelope.
func (ve *RequestValidationError) Details() map[string]interface{} {
	return map[string]interface{}{"fields": ve.errors}
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		// Registration errors only occur for empty tags or nil funcs.
		_ = validate.RegisterValidation("bbox", validateBBox)
	})
	return validate
}

// validateBBox accepts "west,south,east,north" strings.
func validateBBox(fl validator.FieldLevel) bool {
	_, err := models.ParseBBox(fl.Field().String())
	return err == nil
}

// ValidateStruct validates s and returns nil when every constraint holds.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{errors: []FieldError{{
			Field:   "unknown",
			Tag:     "unknown",
			Message: err.Error(),
		}}}
	}

	fields := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: translateError(fe),
		}
	}
	return &RequestValidationError{errors: fields}
}

var errorMessageTemplates = map[string]string{
	"required":  "%s is required",
	"datetime":  "%s must be a date in YYYY-MM-DD format",
	"bbox":      "%s must be west,south,east,north within valid ranges",
	"latitude":  "%s must be a valid latitude (-90 to 90)",
	"longitude": "%s must be a valid longitude (-180 to 180)",
}

var errorMessageWithParam = map[string]string{
	"oneof":    "%s must be one of: %s",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
	"gtefield": "%s must not be before %s",
	"ltefield": "%s must not be after %s",
}

func translateError(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	isString := fe.Kind() == reflect.String
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
