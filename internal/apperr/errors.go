// Package apperr defines the service error taxonomy and its HTTP mapping.
// Stores and services return these for expected conditions; anything else is
// treated as an internal fault at the boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code categorizes an error for status mapping and logging.
type Code string

const (
	CodeNotFound        Code = "not_found"
	CodeConflict        Code = "conflict"
	CodeInvalidState    Code = "invalid_state"
	CodeBadRequest      Code = "bad_request"
	CodeUnauthenticated Code = "unauthenticated"
	CodeInternal        Code = "internal"
)

// Error is a categorized service error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error category to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidState, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// NotFound reports a referenced entity that does not exist.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// Conflict reports a duplicate or a violated cardinality rule. The caller may
// retry after resolving the conflict.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// InvalidState reports an operation applied to an entity in the wrong state.
func InvalidState(msg string) *Error {
	return &Error{Code: CodeInvalidState, Message: msg}
}

// BadRequest reports invalid input.
func BadRequest(msg string) *Error {
	return &Error{Code: CodeBadRequest, Message: msg}
}

// Unauthenticated reports a missing or rejected identity on a protected
// operation.
func Unauthenticated(msg string) *Error {
	if msg == "" {
		msg = "authentication required"
	}
	return &Error{Code: CodeUnauthenticated, Message: msg}
}

// Internal wraps an unexpected fault. The cause is preserved for logging but
// never serialized to clients.
func Internal(msg string, err error) *Error {
	if msg == "" {
		msg = "internal server error"
	}
	return &Error{Code: CodeInternal, Message: msg, Err: err}
}

// From extracts the service error from err, or wraps err as an internal
// fault. From(nil) returns nil.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("", err)
}

// IsCode reports whether err carries the given category.
func IsCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
