// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Error represents a structured error response from the platform API.
// Callers can use errors.As to extract the structured information:
//
//	var apiErr *api.Error
//	if errors.As(err, &apiErr) {
//	    if apiErr.IsValidation() { ... }
//	}
type Error struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
	// Message is the human-readable error description from the server.
	Message string `json:"message"`
	// Fields holds per-field validation messages when the server
	// rejected a form submission. Empty for non-validation errors.
	Fields map[string]string `json:"errors,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
}

// IsValidation reports whether the error is a validation failure
// (400). Calling forms render these inline per field; they are never
// surfaced through the generic notification path.
func (e *Error) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest
}

// IsUnauthorized reports whether err is an API error with status 401.
// The session chokepoint recovers these via the refresh protocol;
// callers only see a 401 after recovery has been exhausted.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsValidation reports whether err is a validation-class API error.
func IsValidation(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.IsValidation()
}

// UserMessage converts an error from this package into the text shown
// in a transient user-visible notification. Server-provided messages
// win when present; a request that never reached the server gets a
// connectivity-specific message; anything else gets a generic fallback.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "An error occurred"
	}
	// A *url.Error means the HTTP round-trip itself failed: the request
	// never reached the server.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return "Network error. Please check your connection."
	}
	return "An unexpected error occurred."
}
