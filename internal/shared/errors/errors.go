// Package errors defines the error taxonomy shared by the dashboard stores,
// the orchestration layer, and the HTTP API.
//
// Every failure a caller can observe carries a Code so the transport layer
// can map it to a distinct response without string matching:
//   - VALIDATION: malformed or missing input, no state change
//   - NOT_FOUND: referenced widget or preset does not exist, no state change
//   - PERSISTENCE: the durable write failed, safe to retry
//   - NO_BACKUP_AVAILABLE: unfocus called without a pending focus backup
//   - INTERNAL: anything else
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code identifies the kind of failure.
type Code string

const (
	CodeValidation  Code = "VALIDATION"
	CodeNotFound    Code = "NOT_FOUND"
	CodePersistence Code = "PERSISTENCE"
	CodeNoBackup    Code = "NO_BACKUP_AVAILABLE"
	CodeInternal    Code = "INTERNAL"
)

// Error is a structured error with a code and optional details.
type Error struct {
	Code    Code                   `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new Error
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap wraps an existing error with a code
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Cause: err}
}

// Validation creates a validation error.
func Validation(format string, args ...interface{}) *Error {
	return New(CodeValidation, fmt.Sprintf(format, args...))
}

// NotFound creates a not-found error for the given kind of resource.
func NotFound(kind, key string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s not found", kind)).
		WithDetail("kind", kind).
		WithDetail("key", key)
}

// Persistence wraps a failed durable write.
func Persistence(document string, err error) *Error {
	return Wrap(err, CodePersistence, fmt.Sprintf("failed to persist %s", document)).
		WithDetail("document", document)
}

// NoBackup reports that unfocus was requested without a pending backup.
func NoBackup() *Error {
	return New(CodeNoBackup, "No focus backup available. Use /api/presets/activate/briefing instead.")
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the code from err, or "" if err carries none.
func GetCode(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Message returns the client-facing message of err: the Message of the
// outermost *Error, or err.Error() for plain errors.
func Message(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
