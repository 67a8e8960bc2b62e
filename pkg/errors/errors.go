// Package errors provides structured error types for skelgraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the library
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes fall into three groups that mirror how callers react to them:
//   - Domain errors (INVALID_*, SELF_MERGE, NO_PATH, STALE_DESCRIPTOR):
//     a precondition was violated; the operation did nothing and the caller
//     may skip the item and carry on.
//   - Invariant breaches (INVARIANT_BREACH): the graph reached a state that
//     should be unreachable. The current operation is aborted and the error
//     must be surfaced.
//   - I/O errors (IO_ERROR, FILE_NOT_FOUND, INVALID_FORMAT).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidIndex, "segment %d out of range", i)
//	if errors.Is(err, errors.ErrCodeInvalidIndex) {
//	    // Skip this edge
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "failed to open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidIndex  Code = "INVALID_INDEX"
	ErrCodeInvalidDegree Code = "INVALID_DEGREE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeSelfMerge     Code = "SELF_MERGE"

	// Lookup errors
	ErrCodeStaleDescriptor Code = "STALE_DESCRIPTOR"
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeNoPath          Code = "NO_PATH"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// I/O errors
	ErrCodeIO Code = "IO_ERROR"

	// Internal errors
	ErrCodeInvariant   Code = "INVARIANT_BREACH"
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

// IsDomain reports whether err is a recoverable precondition failure.
// Batch operations skip items failing with a domain error and keep going.
func IsDomain(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidIndex, ErrCodeInvalidDegree,
		ErrCodeSelfMerge, ErrCodeStaleDescriptor, ErrCodeNotFound, ErrCodeNoPath:
		return true
	}
	return false
}
