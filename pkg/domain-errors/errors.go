// Package domainerrors provides coded errors that cross service boundaries.
//
// Services return these so the HTTP layer can translate a code into a status
// without inspecting error strings. Infrastructure layers use the sentinels in
// pkg/platform/sentinel instead; services translate sentinel facts into coded
// errors at the boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping and programmatic handling.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_failed"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"

	// Workflow transition failures. Both map to 400 but stay distinct so
	// callers can tell "you skipped a step" from "a branching field is
	// missing" without parsing messages.
	CodeInvalidTransition   Code = "invalid_transition"
	CodePrerequisiteMissing Code = "prerequisite_missing"
	CodeInternal           Code = "internal_error"
)

// FieldError reports a single field-level validation failure. Validation
// errors carry every violation so callers can fix a whole form in one round
// trip instead of discovering failures one at a time.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error is a coded domain error, optionally carrying field-level detail and a
// wrapped cause.
type Error struct {
	Code    Code
	Message string
	Fields  []FieldError
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a coded error with a human-readable message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// NewValidation constructs a validation error from field violations.
func NewValidation(fields []FieldError) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Fields: fields}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// FieldsOf extracts field violations from err, or nil if err carries none.
func FieldsOf(err error) []FieldError {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}
