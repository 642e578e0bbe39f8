// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package portalapi

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// APIError is a structured error response from the portal backend.
// Callers extract it with errors.As:
//
//	var apiErr *portalapi.APIError
//	if errors.As(err, &apiErr) {
//	    for field, problems := range apiErr.Errors { ... }
//	}
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`

	// Message is the human-readable error from the server.
	Message string `json:"message"`

	// Errors holds field-level validation failures, keyed by form
	// field name. Empty for non-validation errors.
	Errors map[string][]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("portal: %d: %s", e.StatusCode, e.Message)
	}

	// Deterministic field order so error strings are stable in logs
	// and tests.
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var details []string
	for _, field := range fields {
		details = append(details, field+": "+strings.Join(e.Errors[field], ", "))
	}
	return fmt.Sprintf("portal: %d: %s (%s)", e.StatusCode, e.Message, strings.Join(details, "; "))
}

// IsAuthError reports whether err is a 401 from the backend. By the
// time the caller sees it, the client has already cleared the token
// store and fired the auth-failure hook.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsValidationError reports whether err carries field-level
// validation failures.
func IsValidationError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnprocessableEntity || len(apiErr.Errors) > 0
}

// FieldErrors returns the field-level validation failures carried by
// err, or nil if err is not a validation error.
func FieldErrors(err error) map[string][]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Errors
	}
	return nil
}
