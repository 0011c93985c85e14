// Package errors provides structured error types for dialogtree.
//
// The editor core reports rejected input as "nothing changed" rather than
// as an error. The outer surfaces (CLI, HTTP API, import/export, stores)
// still need machine-readable failures; this package supplies them:
//   - Stable codes for programmatic handling and HTTP status mapping
//   - User-friendly messages without the code prefix
//   - Wrapping that keeps the cause visible to errors.Is/As
//
// # Error Codes
//
//   - INVALID_*: input validation failures
//   - *_NOT_FOUND: unknown character, node or connection
//   - STORE_UNAVAILABLE, DECODE_FAILED: persistence failures
//   - INTERNAL_ERROR: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNodeNotFound, "no node %q", id)
//	if errors.Is(err, errors.ErrCodeNodeNotFound) {
//	    // answer 404
//	}
//
//	err := errors.Wrap(errors.ErrCodeStoreUnavailable, origErr, "open %s store", backend)
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
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidColor Code = "INVALID_COLOR"
	ErrCodeInvalidID    Code = "INVALID_ID"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeCharacterNotFound  Code = "CHARACTER_NOT_FOUND"
	ErrCodeNodeNotFound       Code = "NODE_NOT_FOUND"
	ErrCodeConnectionNotFound Code = "CONNECTION_NOT_FOUND"
	ErrCodeFileNotFound       Code = "FILE_NOT_FOUND"

	// Persistence errors
	ErrCodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	ErrCodeDecodeFailed     Code = "DECODE_FAILED"

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

// IsNotFound reports whether err carries one of the *_NOT_FOUND codes.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeCharacterNotFound, ErrCodeNodeNotFound, ErrCodeConnectionNotFound, ErrCodeFileNotFound:
		return true
	}
	return false
}

// IsInvalid reports whether err is an input validation failure.
func IsInvalid(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidColor, ErrCodeInvalidID, ErrCodeInvalidPath:
		return true
	}
	return false
}
