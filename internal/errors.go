package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is a handler error that carries a status code.
// The message is safe to show to users; Err is only logged.
type HTTPError struct {
	Err       error
	Message   string
	Title     string
	Detail    string
	RequestID string
	Code      int
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status.
func (e *HTTPError) StatusCode() int {
	return e.Code
}

// StatusText returns the title, falling back to the standard status text.
func (e *HTTPError) StatusText() string {
	if e.Title != "" {
		return e.Title
	}
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithTitle(title string) HTTPErrorOption {
	return func(e *HTTPError) { e.Title = title }
}

func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) { e.Detail = detail }
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) { e.RequestID = id }
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) { e.Err = err }
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrMethodNotAllowed(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusMethodNotAllowed, message, opts...)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusConflict, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

// AsHTTPError returns the HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return nil
}

// StatusOf maps an error to a response status. Any error in the chain with
// a StatusCode method counts; errors without a status are internal errors.
func StatusOf(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code != 0 {
			return code
		}
	}
	return http.StatusInternalServerError
}
