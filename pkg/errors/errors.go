// Package errors provides the coded errors returned by the catalogue.
//
// Every expected failure (unknown ISBN, duplicate ISBN, a forbidden loan,
// a bad position) is reported as an *Error carrying a Code. Callers match
// them with errors.Is against the sentinels:
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeDuplicateKey     Code = "DUPLICATE_KEY"
	CodeInvalidOperation Code = "INVALID_OPERATION"
	CodeIndexOutOfRange  Code = "INDEX_OUT_OF_RANGE"
	CodeValidation       Code = "VALIDATION"
	CodeInternal         Code = "INTERNAL"
)

// Error is a catalogue error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Expected reports whether the error is a recoverable caller-facing
// condition. Internal errors indicate a bug.
func (e *Error) Expected() bool {
	return e.Code != CodeInternal
}

// WithDetails returns a copy of the error with details attached.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause returns a copy of the error wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrDuplicateKey     = &Error{Code: CodeDuplicateKey, Message: "duplicate key"}
	ErrInvalidOperation = &Error{Code: CodeInvalidOperation, Message: "invalid operation"}
	ErrIndexOutOfRange  = &Error{Code: CodeIndexOutOfRange, Message: "index out of range"}
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal         = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFound creates a not found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// DuplicateKey creates a duplicate key error.
func DuplicateKey(format string, args ...any) *Error {
	return &Error{Code: CodeDuplicateKey, Message: fmt.Sprintf(format, args...)}
}

// InvalidOperation creates an invalid operation error.
func InvalidOperation(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

// IndexOutOfRange creates an out of range error for position i in a
// sequence of length n.
func IndexOutOfRange(i, n int) *Error {
	return &Error{
		Code:    CodeIndexOutOfRange,
		Message: fmt.Sprintf("index %d out of range [0, %d)", i, n),
	}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with per-field messages.
func ValidationWithDetails(msg string, details map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Internal creates an internal error. These are bugs, not normal outcomes.
func Internal(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the Code of err, or CodeInternal when err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
