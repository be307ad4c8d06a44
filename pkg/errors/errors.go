// Package errors provides structured error types for stagegraph.
//
// Error codes give the CLI and the HTTP API a machine-readable category for
// every user-facing failure, while the message stays human readable.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND_*: Resource not found
//   - CACHE_*: Cache backend failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidWorkflow, "unknown root key %q", key)
//	if errors.Is(err, errors.ErrCodeInvalidWorkflow) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidConfig, origErr, "load %s", path)
//
// The diagram engine itself never returns these: missing boxes and malformed
// workflow items degrade to empty paths and skipped nodes.
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
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidWorkflow Code = "INVALID_WORKFLOW"
	ErrCodeInvalidBoxes    Code = "INVALID_BOXES"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidScale    Code = "INVALID_SCALE"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"
	ErrCodeStageNotFound Code = "STAGE_NOT_FOUND"
	ErrCodeNodeNotFound  Code = "NODE_NOT_FOUND"

	// Cache errors
	ErrCodeCache Code = "CACHE_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// statuses maps codes to HTTP statuses. Codes not listed answer 500.
var statuses = map[Code]int{
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidFormat:   http.StatusBadRequest,
	ErrCodeInvalidWorkflow: http.StatusBadRequest,
	ErrCodeInvalidBoxes:    http.StatusBadRequest,
	ErrCodeInvalidPath:     http.StatusBadRequest,
	ErrCodeInvalidScale:    http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeFileNotFound:    http.StatusNotFound,
	ErrCodeStageNotFound:   http.StatusNotFound,
	ErrCodeNodeNotFound:    http.StatusNotFound,
	ErrCodeUnsupported:     http.StatusNotImplemented,
}

// HTTPStatus maps an error to the status the HTTP API answers with.
func HTTPStatus(err error) int {
	if status, ok := statuses[GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
