package mwm

import "github.com/dmitrymomot/mwm/internal"

// Page table types
type (
	// View produces the content of a page.
	View = internal.View

	// Action is a per-method page entry: a View or a HandlerFunc.
	Action = internal.Action

	// Module is the value a route file exports.
	Module = internal.Module

	// Layout is a directory layout created with Wrap or Guard.
	Layout = internal.Layout

	// WrapFunc places page content inside layout chrome.
	WrapFunc = internal.WrapFunc

	// GuardFunc decides whether a request may reach nested layouts and content.
	GuardFunc = internal.GuardFunc

	// DocumentFunc renders the outermost HTML document around a full page.
	DocumentFunc = internal.DocumentFunc

	// PageRoute is a compiled route table entry.
	PageRoute = internal.PageRoute

	// Asset is a static file served at a fixed path.
	Asset = internal.Asset
)

// Wrap returns a layout that only adds chrome.
func Wrap(fn WrapFunc) Layout {
	return internal.Wrap(fn)
}

// Guard returns a layout that runs check before anything nested below it.
//
// Example:
//
//	var Layout = mwm.Guard(func(c mwm.Context) error {
//	    if !c.IsAuthenticated() {
//	        return mwm.RedirectTo("/identity/sign-in?returnUrl=" + url.QueryEscape(c.Request().URL.RequestURI()))
//	    }
//	    return nil
//	}, adminChrome)
func Guard(check GuardFunc, wrap WrapFunc) Layout {
	return internal.Guard(check, wrap)
}

// WithStatus makes a view respond with code instead of 200.
// Useful for re-rendering a form with 422.
func WithStatus(code int, c Component) Component {
	return internal.WithStatus(code, c)
}

// Redirects

// RedirectError is a redirect used as control flow.
type RedirectError = internal.RedirectError

// RedirectTo returns an error that ends the request with a 302 redirect.
// HTMX requests get an HX-Redirect header instead.
func RedirectTo(url string) error {
	return internal.RedirectTo(url)
}

// RedirectWithStatus returns a redirect error with a custom 3xx status.
func RedirectWithStatus(code int, url string) error {
	return internal.RedirectWithStatus(code, url)
}

// AsRedirect extracts a RedirectError from err.
func AsRedirect(err error) (*RedirectError, bool) {
	return internal.AsRedirect(err)
}

// HTTP errors

type (
	// HTTPError represents an HTTP error with status code and message.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption
)

// NewHTTPError creates an HTTPError with the given code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithTitle sets a human-friendly title.
func WithTitle(title string) HTTPErrorOption { return internal.WithTitle(title) }

// WithDetail sets extended detail.
func WithDetail(detail string) HTTPErrorOption { return internal.WithDetail(detail) }

// WithRequestID attaches a request id for support tickets.
func WithRequestID(id string) HTTPErrorOption { return internal.WithRequestID(id) }

// WithError wraps an underlying error.
func WithError(err error) HTTPErrorOption { return internal.WithError(err) }

// ErrBadRequest returns a 400 error.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

// ErrUnauthorized returns a 401 error.
func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

// ErrForbidden returns a 403 error.
func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

// ErrNotFound returns a 404 error.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// ErrMethodNotAllowed returns a 405 error.
func ErrMethodNotAllowed(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrMethodNotAllowed(message, opts...)
}

// ErrConflict returns a 409 error.
func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrConflict(message, opts...)
}

// ErrInternal returns a 500 error.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// AsHTTPError extracts an HTTPError from err, or returns nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// StatusOf returns the HTTP status err maps to. Unknown errors are 500.
func StatusOf(err error) int {
	return internal.StatusOf(err)
}

// Typed request helpers

// Scalar is the set of types Param and Query can parse into.
type Scalar = internal.Scalar

// Param returns the route param name parsed as T, or T's zero value.
func Param[T Scalar](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query returns the query value name parsed as T, or T's zero value.
func Query[T Scalar](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault returns the query value name parsed as T, or defaultValue.
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// ContextValue returns the value stored under key as T.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Extractors

type (
	// Extractor tries its sources in order.
	Extractor = internal.Extractor

	// ExtractorSource extracts a value from the request.
	ExtractorSource = internal.ExtractorSource
)

// NewExtractor creates an Extractor from sources.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }

// FromForm reads a form value.
func FromForm(name string) ExtractorSource { return internal.FromForm(name) }

// FromParam reads a route param.
func FromParam(name string) ExtractorSource { return internal.FromParam(name) }

// FromCookie reads a plain cookie.
func FromCookie(name string) ExtractorSource { return internal.FromCookie(name) }

// FromCookieSigned reads a signed cookie.
func FromCookieSigned(name string) ExtractorSource { return internal.FromCookieSigned(name) }

// FromBearerToken reads the bearer token of the Authorization header.
func FromBearerToken() ExtractorSource { return internal.FromBearerToken() }
