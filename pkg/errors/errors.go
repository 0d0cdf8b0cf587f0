// Package errors provides structured error types for burrow.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_* and MALFORMED_*: Input validation failures
//   - NOT_FOUND: Unknown runs or cache entries
//   - UNSOLVABLE, TIMEOUT: Search outcomes a caller asked to treat as failures
//   - INTERNAL_* and INVARIANT_*: Bugs
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedLayout, "room %d has a gap", room)
//	if errors.Is(err, errors.ErrCodeMalformedLayout) {
//	    // Handle bad diagram
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvariantViolation, origErr, "apply move %d", i)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeMalformedLayout Code = "MALFORMED_LAYOUT"
	ErrCodeInvalidCatalog  Code = "INVALID_CATALOG"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Search outcomes
	ErrCodeUnsolvable Code = "UNSOLVABLE"
	ErrCodeTimeout    Code = "TIMEOUT"
	ErrCodeCanceled   Code = "CANCELED"

	// Backend errors
	ErrCodeBackend Code = "BACKEND_ERROR"

	// Internal errors
	ErrCodeInvariantViolation Code = "INVARIANT_VIOLATION"
	ErrCodeInternal           Code = "INTERNAL_ERROR"
	ErrCodeUnsupported        Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code the API responds with.
// Errors without a code are internal errors.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeMalformedLayout, ErrCodeInvalidCatalog,
		ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeUnsolvable:
		return http.StatusUnprocessableEntity
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeCanceled:
		return 499
	case ErrCodeBackend:
		return http.StatusBadGateway
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
