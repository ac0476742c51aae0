// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Authgate.

It provides a rich error type that bridges the gap between low-level
component errors (hashing, token, storage) and high-level HTTP responses.

Architecture:

  - AppError: A struct containing a machine-readable Code and a client-safe message.
  - Kinds: Every error kind maps to exactly one Code and one HTTP status.
  - Matching: [errors.Is] compares AppErrors by Code, so sentinels declared
    once can match an instance that carries extra details or a cause.

Every error that leaves the service layer should be an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"net/http"
)

// # Error Codes

// Stable machine-readable codes returned to API clients.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeDuplicateUser      = "DUPLICATE_USER"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeTransient          = "TRANSIENT"
	CodeHashFormat         = "HASH_FORMAT_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError is the canonical error type for the Authgate API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL errors).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "UNAUTHORIZED").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an [*AppError] of the same kind.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// WithCause returns a copy of e carrying cause for server-side logging.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// WithDetails returns a copy of e carrying per-field details.
func (e *AppError) WithDetails(details ...FieldError) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

// # Client Errors (4xx)

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// InvalidEmail creates a 400 [AppError] for a syntactically malformed address.
func InvalidEmail(msg string) *AppError {
	return &AppError{
		Code:       CodeInvalidEmail,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// WeakPassword creates a 400 [AppError] for a password rejected by policy.
func WeakPassword(msg string) *AppError {
	return &AppError{
		Code:       CodeWeakPassword,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// DuplicateUser creates a 409 [AppError] for unique-email violations.
func DuplicateUser(msg string) *AppError {
	return &AppError{
		Code:       CodeDuplicateUser,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// InvalidCredentials creates a 401 [AppError] for a failed login.
//
// The message must stay identical for an unknown email and a wrong password.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:       CodeInvalidCredentials,
		Message:    "Invalid email or password",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Route") // Returns "Route not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// # Server Errors (5xx)

// Transient creates a 503 [AppError] for infrastructure failures the caller
// may retry (connection loss, timeouts, lock contention).
func Transient(cause error) *AppError {
	return &AppError{
		Code:       CodeTransient,
		Message:    "The service is temporarily unavailable, please retry",
		HTTPStatus: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// HashFormat creates a 500 [AppError] for a corrupt stored credential.
func HashFormat(cause error) *AppError {
	return &AppError{
		Code:       CodeHashFormat,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// CodeOf returns the Code of the first [*AppError] in err's chain, or
// [CodeInternal] when there is none.
func CodeOf(err error) string {
	if ae := As(err); ae != nil {
		return ae.Code
	}
	return CodeInternal
}
