// Package apperr defines tagged application errors and maps any error
// reaching the HTTP boundary to the JSON failure envelope.
package apperr

import (
	"fmt"
	"net/http"
)

// FieldError is one failed input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an application error that carries its own status and message.
type Error struct {
	Status  int
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error with the given status and message.
func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

// Wrap is New with an underlying cause kept for logging.
func Wrap(status int, msg string, err error) *Error {
	return &Error{Status: status, Message: msg, Err: err}
}

func NotFound(msg string) *Error   { return New(http.StatusNotFound, msg) }
func BadRequest(msg string) *Error { return New(http.StatusBadRequest, msg) }
func Forbidden(msg string) *Error  { return New(http.StatusForbidden, msg) }
func Conflict(msg string) *Error   { return New(http.StatusConflict, msg) }

// Validation builds a 400 carrying per-field messages.
func Validation(fields ...FieldError) *Error {
	return &Error{Status: http.StatusBadRequest, Message: MsgValidation, Fields: fields}
}
