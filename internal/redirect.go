package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// RedirectError is returned from views, guards and handlers to end the
// request with a redirect. The dispatcher writes it as a normal response.
type RedirectError struct {
	URL  string
	Code int
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect %d to %s", e.Code, e.URL)
}

// RedirectTo returns a 302 redirect to url.
func RedirectTo(url string) error {
	return &RedirectError{URL: url, Code: http.StatusFound}
}

// RedirectWithStatus returns a redirect to url with the given 3xx status.
func RedirectWithStatus(code int, url string) error {
	if code < 300 || code > 399 {
		code = http.StatusFound
	}
	return &RedirectError{URL: url, Code: code}
}

// AsRedirect returns the RedirectError in err's chain.
func AsRedirect(err error) (*RedirectError, bool) {
	var re *RedirectError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
