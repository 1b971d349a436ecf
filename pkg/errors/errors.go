// Package errors provides structured error types for the seqgen application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP server, and the
//     layout engine
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Most codes describe semantic problems in a sequence-diagram source that the
// layouter detects while walking the statement list; the remainder cover
// parsing and driver-level failures.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownParticipant, "unknown participant %q", name)
//	if errors.Is(err, errors.ErrCodeUnknownParticipant) {
//	    // Handle the missing declaration
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Diagram semantics (detected by the layouter)
	ErrCodeDuplicateParticipant Code = "DUPLICATE_PARTICIPANT"
	ErrCodeUnknownParticipant   Code = "UNKNOWN_PARTICIPANT"
	ErrCodeNotActive            Code = "NOT_ACTIVE"
	ErrCodeInactiveParticipant  Code = "INACTIVE_PARTICIPANT"
	ErrCodeSelfMessage          Code = "SELF_MESSAGE"
	ErrCodeDirectedActivation   Code = "INVALID_DIRECTED_ACTIVATION"
	ErrCodeEmptyFrame           Code = "EMPTY_FRAME"
	ErrCodeUnclosedActivation   Code = "UNCLOSED_ACTIVATION"

	// Engine misuse
	ErrCodeAlreadyExecuted Code = "ALREADY_EXECUTED"

	// Source parsing
	ErrCodeSyntax           Code = "SYNTAX_ERROR"
	ErrCodeUnknownStatement Code = "UNKNOWN_STATEMENT"

	// Driver / general
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
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
