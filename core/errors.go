package core

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the domain error type shared by all modules. It carries an HTTP
// status code and a machine-readable key so transport layers can render it
// without inspecting module internals.
type Error struct {
	Code    int    // HTTP status code
	Key     string // Machine-readable reason (e.g. "invalid-credentials")
	Message string // Human-readable description
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Validation reports missing or malformed input.
func Validation(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Key: "validation_failed", Message: message}
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *Error {
	return &Error{Code: http.StatusConflict, Key: "conflict", Message: message}
}

// NotFound reports that no record matched the query.
func NotFound(message string) *Error {
	return &Error{Code: http.StatusNotFound, Key: "not_found", Message: message}
}

// Authentication failure keys used across the session workflow.
const (
	ReasonInvalidCredentials = "invalid-credentials"
	ReasonExpiredOrInvalid   = "expired-or-invalid"
	ReasonSuperseded         = "superseded"
	ReasonMissingToken       = "missing-token"
)

// Auth reports an authentication failure with a specific reason key.
func Auth(reason, message string) *Error {
	return &Error{Code: http.StatusUnauthorized, Key: reason, Message: message}
}

// Internal wraps an unexpected failure, preserving the original cause.
func Internal(message string, cause error) *Error {
	return &Error{Code: http.StatusInternalServerError, Key: "internal_error", Message: message, cause: cause}
}

// IsAuth reports whether err is an authentication error with the given reason.
// An empty reason matches any authentication error.
func IsAuth(err error, reason string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Code != http.StatusUnauthorized {
		return false
	}
	return reason == "" || e.Key == reason
}

// StatusCode extracts the HTTP status code from err, defaulting to 500 for
// untyped errors so unexpected failures are never reported as client faults.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}
