// Package errors provides structured error types for branchdeck.
//
// Every user-facing failure carries a machine-readable [Code] so the CLI,
// the terminal viewer and the preview server can decide how to present it
// without matching on message text.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (decks, snapshots, flags)
//   - DANGLING_REFERENCE: A parent link that does not resolve
//   - FILE_NOT_FOUND: A deck or config file is missing
//   - CAPTURE_FAILED: The export collaborator could not produce an image
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSnapshot, "duplicate key %q", key)
//	if errors.Is(err, errors.ErrCodeInvalidSnapshot) {
//	    // skip the page, keep the deck
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidDeck, origErr, "decode %s", path)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidDeck     Code = "INVALID_DECK"
	ErrCodeInvalidSnapshot Code = "INVALID_SNAPSHOT"
	ErrCodeInvalidKey      Code = "INVALID_KEY"

	// Graph reference errors
	ErrCodeDanglingReference Code = "DANGLING_REFERENCE"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Export errors
	ErrCodeCaptureFailed Code = "CAPTURE_FAILED"
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

// Coder is implemented by typed errors defined outside this package
// (for example a dangling parent reference) that still map onto a Code.
type Coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a [Coder] with a
// matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// The outermost *Error or [Coder] in the chain wins.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case Coder:
			return e.Code()
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				if code := GetCode(inner); code != "" {
					return code
				}
			}
			return ""
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// When the outermost coded error in the chain is an *Error, returns its
// message without the code prefix. Otherwise returns the error string as-is.
func UserMessage(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch v := e.(type) {
		case *Error:
			if v.Cause != nil {
				return v.Message + ": " + UserMessage(v.Cause)
			}
			return v.Message
		case Coder:
			return err.Error()
		}
	}
	return err.Error()
}
