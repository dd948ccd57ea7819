// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/visamark/visamark/api"
)

// ErrorCategory classifies command errors so the main function can
// pick an exit code and decide whether to print remediation hints
// without parsing error message text.
type ErrorCategory string

const (
	// CategoryValidation indicates the user provided invalid input:
	// missing required arguments, unparseable values, or input the
	// server rejected with a validation error. Fix the input and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryAuth indicates the user is not signed in or the stored
	// session could not be refreshed. Run "visamark login".
	CategoryAuth ErrorCategory = "auth"

	// CategoryNotFound indicates a referenced resource does not exist:
	// unknown document ID, unknown assessment session. Retrying with
	// the same arguments will not help.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryTransient indicates a temporary failure: network error,
	// timeout, server unavailable. Back off and retry.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal indicates an unexpected error: bugs, I/O
	// failures, malformed data. Report rather than retry.
	CategoryInternal ErrorCategory = "internal"
)

// CommandError is a categorized error returned by command handlers.
// It wraps an inner error, preserving the chain for errors.Is and
// errors.As, while the category drives the process exit code. Use the
// category constructors (Validation, Auth, etc.) rather than building
// CommandError directly.
type CommandError struct {
	Category ErrorCategory
	Err      error
}

func (e *CommandError) Error() string { return e.Err.Error() }

func (e *CommandError) Unwrap() error { return e.Err }

// ExitCode maps the category to a process exit code.
func (e *CommandError) ExitCode() int {
	switch e.Category {
	case CategoryValidation:
		return 2
	case CategoryAuth:
		return 3
	case CategoryNotFound:
		return 4
	case CategoryTransient:
		return 5
	default:
		return 1
	}
}

// Validation creates a validation error: the user provided bad input.
func Validation(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// Auth creates an authentication error: no session, or a session the
// server no longer accepts.
func Auth(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryAuth, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced resource does not exist.
func NotFound(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error: a temporary failure that may
// succeed on retry.
func Transient(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure or bug.
func Internal(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// FromAPI converts an error from the API client into a categorized
// command error with a user-facing message. Validation responses keep
// the server's message plus its per-field detail; everything else gets
// the normalized text from api.UserMessage.
func FromAPI(err error) *CommandError {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsValidation():
			return Validation("%s", validationMessage(apiErr))
		case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
			return Auth("%s", api.UserMessage(err))
		case apiErr.StatusCode == 404:
			return NotFound("%s", api.UserMessage(err))
		case apiErr.StatusCode >= 500:
			return Transient("%s", api.UserMessage(err))
		}
		return Internal("%s", api.UserMessage(err))
	}
	return Transient("%s", api.UserMessage(err))
}

// validationMessage joins the server's top-level message with its
// per-field detail, one indented "field: message" line each, fields
// sorted for stable output.
func validationMessage(apiErr *api.Error) string {
	message := api.UserMessage(apiErr)
	if len(apiErr.Fields) == 0 {
		return message
	}

	fields := make([]string, 0, len(apiErr.Fields))
	for field := range apiErr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var builder strings.Builder
	builder.WriteString(message)
	for _, field := range fields {
		builder.WriteString("\n  ")
		builder.WriteString(field)
		builder.WriteString(": ")
		builder.WriteString(apiErr.Fields[field])
	}
	return builder.String()
}
