package api

import (
	"errors"
	"net/http"
)

// Messages of the error envelope.
const (
	MsgValidationFailed = "Input validation failed"
	MsgNotFound         = "Not found"
	MsgMethodNotAllowed = "Method not allowed"
	MsgInternal         = "Internal server error"
)

// Error is an endpoint error with a status and client-facing detail.
type Error struct {
	FieldErrors map[string][]string
	Message     string
	FormErrors  []string
	Status      int
}

func (e *Error) Error() string {
	return e.Message
}

// HasDetail reports whether the error carries field or form errors.
func (e *Error) HasDetail() bool {
	return len(e.FieldErrors) > 0 || len(e.FormErrors) > 0
}

// NewError returns an error answered with status and message.
func NewError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// BadRequest returns a 400 error.
func BadRequest(message string) *Error {
	return NewError(http.StatusBadRequest, message)
}

// NotFound returns a 404 error.
func NotFound(message string) *Error {
	return NewError(http.StatusNotFound, message)
}

// Conflict returns a 409 error.
func Conflict(message string) *Error {
	return NewError(http.StatusConflict, message)
}

// ValidationError returns a 400 error with field detail.
func ValidationError(fields map[string][]string, form ...string) *Error {
	return &Error{
		Status:      http.StatusBadRequest,
		Message:     MsgValidationFailed,
		FieldErrors: fields,
		FormErrors:  form,
	}
}

// asError returns the *Error in err's chain.
func asError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// errorBody is the JSON envelope of a plain error.
type errorBody struct {
	Error string `json:"error"`
}

// validationBody is the JSON envelope of an input validation failure.
type validationBody struct {
	FieldErrors map[string][]string `json:"fieldErrors"`
	Error       string              `json:"error"`
	FormErrors  []string            `json:"formErrors"`
}
