// Package errors provides the quote engine's error taxonomy.
package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Type identifies the category of error
type Type string

const (
	// TypeInvalidRequest indicates malformed or incomplete quote input.
	// The caller owns the fix and should surface it to the user.
	TypeInvalidRequest Type = "INVALID_REQUEST"

	// TypeNotFound indicates a reference catalog lookup miss.
	// This is a catalog configuration defect, never a user error.
	TypeNotFound Type = "NOT_FOUND"

	// TypeRoundingOverflow indicates a computed amount went negative where it must not
	TypeRoundingOverflow Type = "ROUNDING_OVERFLOW"

	// TypeParsing indicates a catalog file could not be parsed
	TypeParsing Type = "PARSING_ERROR"

	// TypeConfig indicates a configuration or catalog validation error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsOfType reports whether e has type t. It is not named Is, which
// errors.Is reserves for error targets.
func (e *Error) IsOfType(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context. The cause keeps its stack trace.
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   crdb.WithStack(cause),
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return Wrap(errType, fmt.Sprintf(format, args...), cause)
}

// IsType reports whether err, or anything it wraps, is an *Error of type t
func IsType(err error, t Type) bool {
	var e *Error
	if crdb.As(err, &e) {
		return e.IsOfType(t)
	}
	return false
}

// TypeOf returns the type of the first *Error in err's chain, or TypeInternal
func TypeOf(err error) Type {
	var e *Error
	if crdb.As(err, &e) {
		return e.Type
	}
	return TypeInternal
}

// InvalidRequest creates an invalid request error
func InvalidRequest(format string, args ...interface{}) *Error {
	return Newf(TypeInvalidRequest, format, args...)
}

// NotFound creates a not found error
func NotFound(kind, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", kind, identifier).
		WithContext("kind", kind).
		WithContext("id", identifier)
}

// RoundingOverflow creates a rounding overflow error
func RoundingOverflow(format string, args ...interface{}) *Error {
	return Newf(TypeRoundingOverflow, format, args...)
}

// Parsing creates a parsing error
func Parsing(message string, cause error) *Error {
	return Wrap(TypeParsing, message, cause)
}

// Config creates a configuration error
func Config(format string, args ...interface{}) *Error {
	return Newf(TypeConfig, format, args...)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}

// IsInvalidRequest checks if an error is an invalid request error
func IsInvalidRequest(err error) bool {
	return IsType(err, TypeInvalidRequest)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, TypeNotFound)
}

// IsRoundingOverflow checks if an error is a rounding overflow error
func IsRoundingOverflow(err error) bool {
	return IsType(err, TypeRoundingOverflow)
}
