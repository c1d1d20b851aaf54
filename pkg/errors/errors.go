// Package errors provides structured error types for artfit.
//
// Every failure the placement core reports carries a machine-readable
// [Code] so that the CLI, the HTTP server and the submission pipeline can
// decide how to present it without string matching:
//
//   - NO_PRINT_REGION: the selected view has no derivable extent
//   - NO_ARTWORK: an operation needs an artwork layer and none is loaded
//   - LOAD_FAILED: an image (artwork or product background) could not be loaded
//   - EXPORT_FAILED: the print file could not be rendered or encoded
//   - MOCKUP_FAILED: the mockup service rejected a color
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNoPrintRegion, "view %q has no extent", view)
//	if errors.Is(err, errors.ErrCodeNoPrintRegion) {
//	    // disable export, ask for another view
//	}
//
//	err := errors.Wrap(errors.ErrCodeExportFailed, encErr, "encode %s", format)
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
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Placement errors
	ErrCodeNoPrintRegion Code = "NO_PRINT_REGION"
	ErrCodeNoArtwork     Code = "NO_ARTWORK"

	// Image pipeline errors
	ErrCodeLoadFailed   Code = "LOAD_FAILED"
	ErrCodeExportFailed Code = "EXPORT_FAILED"
	ErrCodeMockupFailed Code = "MOCKUP_FAILED"

	// Resource errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Upstream errors
	ErrCodeNetwork      Code = "NETWORK_ERROR"
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

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

// Fatal reports whether an error should stop an editing session.
// Nothing in the placement core is fatal: unusable regions, missing artwork
// and load or export failures all leave the session usable. Only internal
// errors and unclassified errors are treated as fatal.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	switch GetCode(err) {
	case ErrCodeInternal, "":
		return true
	}
	return false
}
