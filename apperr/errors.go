// Package apperr defines the error taxonomy shared by every controller:
// validation (400), not found (404), forbidden (403), conflict (409) and
// server (500). Messages are part of the API contract and stay stable.
package apperr

import (
	"errors"
	"net/http"
)

type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

func Server(msg string) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: msg}
}

// StatusOf maps any error to an HTTP status. Errors outside the taxonomy are
// reported as server errors.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
