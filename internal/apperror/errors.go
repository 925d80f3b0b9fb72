// Package apperror provides the error types shared by the item sorter.
// AppError carries an HTTP status code and a user-safe message and is mapped
// to a JSON response by the Echo error handler. The sentinel errors describe
// the failure classes of the ordering engines; they are wrapped with context
// and matched with errors.Is.
//
// NEVER return raw database or infrastructure errors to the client. Always
// wrap them in an AppError or return a generic internal error.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// --- Ordering engine failure classes ---

var (
	// ErrUnknownCriterion marks a stored sort selection naming a criterion
	// the extractor does not know. The affected slot is treated as absent.
	ErrUnknownCriterion = errors.New("unknown sort criterion")

	// ErrMissingContext marks a unit of work skipped for lack of a root
	// node, an owning actor, or a backing item.
	ErrMissingContext = errors.New("missing required context")

	// ErrMalformedMutation marks a pending sort change that names no item.
	// The change is allowed through unmodified.
	ErrMalformedMutation = errors.New("sort change without target id")

	// ErrWriteBack marks a durable sort update rejected by the item store.
	ErrWriteBack = errors.New("sort write-back failed")
)

// AppError is the base error type for all errors surfaced over HTTP. It
// carries an HTTP status code, a machine-readable error type, and a
// human-readable message safe to show to the client.
type AppError struct {
	// Code is the HTTP status code (e.g., 404, 400, 500).
	Code int `json:"-"`

	// Type is a machine-readable error classifier (e.g., "not_found").
	Type string `json:"type"`

	// Message is a human-readable description safe for the client.
	Message string `json:"message"`

	// Internal holds the underlying error for logging. Never exposed to client.
	Internal error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewNotFound creates a 404 Not Found error.
func NewNotFound(message string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Type:    "not_found",
		Message: message,
	}
}

// NewBadRequest creates a 400 Bad Request error.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Type:    "bad_request",
		Message: message,
	}
}

// NewUnauthorized creates a 401 Unauthorized error.
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Type:    "unauthorized",
		Message: message,
	}
}

// NewTooManyRequests creates a 429 error for rate-limited clients.
func NewTooManyRequests(message string) *AppError {
	return &AppError{
		Code:    http.StatusTooManyRequests,
		Type:    "rate_limited",
		Message: message,
	}
}

// NewConflict creates a 409 Conflict error.
func NewConflict(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Type:    "conflict",
		Message: message,
	}
}

// NewValidation creates a 422 Unprocessable Entity error for validation failures.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Type:    "validation_error",
		Message: message,
	}
}

// NewMissingContext creates a 500 error for nil precondition checks (actor
// not loaded, dependency not wired).
func NewMissingContext() *AppError {
	return NewInternal(ErrMissingContext)
}

// NewInternal creates a 500 Internal Server Error. The real error is stored
// in Internal for logging but the client only sees a generic message.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     "internal_error",
		Message:  "An unexpected error occurred. Please try again.",
		Internal: err,
	}
}

// SafeMessage returns the client-safe error message from an error. Errors
// that are not AppErrors get a generic message.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "an unexpected error occurred"
}

// SafeCode returns the HTTP status code from an AppError, or 500 for
// any other error type.
func SafeCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
