// Package httperror carries an HTTP status code alongside an error.
package httperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error implements the error interface with HTTP status code support.
type Error struct {
	code    int
	message string
	details []string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the HTTP status code.
func (e *Error) Code() int { return e.code }

// Message returns the error message without the cause.
func (e *Error) Message() string { return e.message }

// Details returns additional human readable problems, if any.
func (e *Error) Details() []string { return e.details }

func (e *Error) Unwrap() error { return e.cause }

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details []string) *Error {
	c := *e
	c.details = details
	return &c
}

func New(code int, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code int, message string, cause error) *Error {
	return &Error{code: code, message: message, cause: cause}
}

func BadRequestf(format string, args ...any) *Error {
	return &Error{code: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

func MethodNotAllowed(message string) *Error {
	return &Error{code: http.StatusMethodNotAllowed, message: message}
}

func Conflict(message string) *Error {
	return &Error{code: http.StatusConflict, message: message}
}

func UnprocessableEntity(message string) *Error {
	return &Error{code: http.StatusUnprocessableEntity, message: message}
}

// From returns err as an *Error, wrapping anything else as a 500.
func From(err error) *Error {
	var he *Error
	if errors.As(err, &he) {
		return he
	}
	return Wrap(http.StatusInternalServerError, "internal error", err)
}
