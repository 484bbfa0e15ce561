package domain

import (
	"errors"
	"fmt"
)

// Code classifies a failure for transport mapping.
type Code string

const (
	CodeValidation   Code = "validation_error"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeRateLimited  Code = "rate_limited"
	CodeUpstream     Code = "upstream_error"
	CodeInternal     Code = "internal_error"
)

// Error is a typed domain condition. The wrapped cause is for logs only and
// is never rendered into client responses.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// NewValidation returns a validation condition with optional field details.
func NewValidation(message string, details map[string]any) *Error {
	return &Error{Code: CodeValidation, Message: message, Details: details}
}

// NewUnauthorized returns an unauthorized condition.
func NewUnauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// NewNotFound returns a not-found condition.
func NewNotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

// NewConflict returns a conflict condition (lock timeout, idempotency mismatch).
func NewConflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// NewRateLimited returns a rate-limited condition carrying the delay after
// which a retry may succeed.
func NewRateLimited(message string, retryAfterMs int64) *Error {
	return &Error{
		Code:    CodeRateLimited,
		Message: message,
		Details: map[string]any{"retryAfterMs": retryAfterMs},
	}
}

// NewUpstream returns an upstream-failure condition. The cause is attached for
// logging but stays out of the client-facing envelope.
func NewUpstream(message string, cause error) *Error {
	return &Error{Code: CodeUpstream, Message: message, cause: cause}
}

// NewInternal wraps an unexpected error as an internal condition.
func NewInternal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", cause: cause}
}

// AsError coerces any error into a typed domain condition; unrecognized
// errors become internal.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return NewInternal(err)
}
