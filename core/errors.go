package core

import (
	"errors"
	"fmt"
	"net/http"
)

// DefaultErrorMessage is returned to clients when a failure carries no public message
const DefaultErrorMessage = "An internal server error occurred"

// StatusError is an error that knows which HTTP status and public message it maps to.
// Errors without one are treated as internal failures by the API layer.
type StatusError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *StatusError) Unwrap() error {
	return e.Err
}

// NewStatusError creates a StatusError wrapping err
func NewStatusError(statusCode int, message string, err error) *StatusError {
	return &StatusError{StatusCode: statusCode, Message: message, Err: err}
}

// NotFound returns a 404 StatusError
func NotFound(message string, err error) *StatusError {
	return NewStatusError(http.StatusNotFound, message, err)
}

// Forbidden returns a 403 StatusError
func Forbidden(message string, err error) *StatusError {
	return NewStatusError(http.StatusForbidden, message, err)
}

// BadRequest returns a 400 StatusError
func BadRequest(message string, err error) *StatusError {
	return NewStatusError(http.StatusBadRequest, message, err)
}

// Conflict returns a 409 StatusError
func Conflict(message string, err error) *StatusError {
	return NewStatusError(http.StatusConflict, message, err)
}

// StatusCodeOf returns the status code embedded in err, or 500
func StatusCodeOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode > 0 {
		return se.StatusCode
	}
	return http.StatusInternalServerError
}

// MessageOf returns the public message embedded in err, or DefaultErrorMessage
func MessageOf(err error) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return DefaultErrorMessage
}
