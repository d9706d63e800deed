package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// PanicError is a recovered panic.
type PanicError struct {
	Value any
	Stack []byte // nil when stack capture is disabled
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// StatusCode reports 500.
func (e *PanicError) StatusCode() int {
	return http.StatusInternalServerError
}

// TimeoutError is returned when a request outlives its deadline.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

// StatusCode reports 503.
func (e *TimeoutError) StatusCode() int {
	return http.StatusServiceUnavailable
}

// AsPanicError returns the PanicError in err's chain.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	ok := errors.As(err, &pe)
	return pe, ok
}

// AsTimeoutError returns the TimeoutError in err's chain.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	ok := errors.As(err, &te)
	return te, ok
}

// IsPanicError reports whether err carries a PanicError.
func IsPanicError(err error) bool {
	_, ok := AsPanicError(err)
	return ok
}

// IsTimeoutError reports whether err carries a TimeoutError.
func IsTimeoutError(err error) bool {
	_, ok := AsTimeoutError(err)
	return ok
}
