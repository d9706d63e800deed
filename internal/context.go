package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/binder"
	"github.com/dmitrymomot/mwm/pkg/cookie"
	"github.com/dmitrymomot/mwm/pkg/htmx"
	"github.com/dmitrymomot/mwm/pkg/job"
	"github.com/dmitrymomot/mwm/pkg/reqctx"
	"github.com/dmitrymomot/mwm/pkg/routing"
	"github.com/dmitrymomot/mwm/pkg/sanitizer"
	"github.com/dmitrymomot/mwm/pkg/storage"
	"github.com/dmitrymomot/mwm/pkg/validator"
)

// ValidationErrors is a collection of validation errors.
type ValidationErrors = validator.ValidationErrors

// PartialParam is the query parameter that requests a partial render.
const PartialParam = "partial"

// Context provides request/response access and helper methods.
// It also implements context.Context by delegating to the request context.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter
	Context() context.Context

	// Param returns a route parameter, or "" if absent.
	Param(name string) string

	// Params returns every route parameter of a page request.
	Params() routing.Params

	Query(name string) string
	QueryDefault(name, defaultValue string) string

	// Form returns a form value, parsing the body on first access.
	Form(name string) string

	FormFile(name string) (multipart.File, *multipart.FileHeader, error)

	Header(name string) string
	SetHeader(name, value string)

	// IsHTMX reports whether the request came from htmx.
	IsHTMX() bool

	// IsPartial reports whether the request wants content without the
	// document shell and layout chrome: an htmx request or ?partial=yes.
	IsPartial() bool

	// Session returns the resolved auth session. Guests get a zero session.
	Session() auth.Session

	// UserID returns the signed-in user's id, or "".
	UserID() string

	IsAuthenticated() bool

	// IsCurrentUser reports whether id is the signed-in user.
	IsCurrentUser(id string) bool

	// SignIn starts a session for identity and sets the session cookie.
	// Returns auth.ErrNotConfigured without a session manager.
	SignIn(identity auth.Identity) error

	// SignOut ends the current session and clears the cookie.
	SignOut() error

	JSON(code int, v any) error
	String(code int, s string) error
	NoContent(code int) error

	// Redirect writes a redirect. htmx requests get HX-Redirect with 200.
	Redirect(code int, url string) error

	// Error returns an HTTPError without writing anything.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Render writes a component. htmx requests always get 200.
	Render(code int, component Component, opts ...htmx.RenderOption) error

	// RenderPartial renders partial for htmx requests and fullPage otherwise.
	RenderPartial(code int, fullPage, partial Component, opts ...htmx.RenderOption) error

	// Bind binds, sanitizes and validates form data.
	// Validation failures are returned separately from system errors.
	Bind(v any) (ValidationErrors, error)

	// BindQuery binds, sanitizes and validates query parameters.
	BindQuery(v any) (ValidationErrors, error)

	// BindJSON binds, sanitizes and validates a JSON body.
	BindJSON(v any) (ValidationErrors, error)

	Written() bool

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a request-scoped value; Get reads it back.
	Set(key any, value any)
	Get(key any) any

	Cookie(name string) (string, error)
	SetCookie(name, value string, maxAge int)
	DeleteCookie(name string)

	// CookieSigned returns a signed cookie value.
	// Returns cookie.ErrNoSecret if no secret is configured.
	CookieSigned(name string) (string, error)
	SetCookieSigned(name, value string, maxAge int) error

	// Flash reads and deletes a flash message.
	Flash(key string, dest any) error

	// SetFlash stores a flash message for the next request.
	SetFlash(key string, value any) error

	ResponseWriter() *ResponseWriter

	// Enqueue adds a background job.
	// Returns job.ErrNotConfigured if jobs are not enabled.
	Enqueue(name string, payload any, opts ...job.EnqueueOption) error

	// EnqueueTx adds a job inside tx; it becomes visible on commit.
	EnqueueTx(tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error

	// Storage returns the object storage client.
	// Returns storage.ErrNotConfigured if storage is not enabled.
	Storage() (storage.Storage, error)

	// Upload stores a form file that passes policy.
	Upload(fh *multipart.FileHeader, policy storage.Policy) (storage.Object, error)

	// DeleteFile removes a stored object.
	DeleteFile(key string) error
}

// requestContext implements Context.
type requestContext struct {
	response       http.ResponseWriter
	request        *http.Request
	responseWriter *ResponseWriter
	logger         *slog.Logger
	cookieManager  *cookie.Manager
	authManager    *auth.Manager
	jobs           JobQueue
	storage        storage.Storage
	params         routing.Params
	session        *auth.Session
}

// newContext wraps w unless it is already a ResponseWriter from an outer
// middleware, so every layer shares one write state.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w, htmx.IsHTMX(r))
	}
	return &requestContext{
		request:        r,
		response:       rw,
		responseWriter: rw,
		logger:         app.logger,
		cookieManager:  app.cookieManager,
		authManager:    app.authManager,
		jobs:           app.jobs,
		storage:        app.storage,
	}
}

// attach binds a matched page request: route params and the session are
// resolved once and published on the request context for downstream code.
func (c *requestContext) attach(params routing.Params) {
	sess := c.Session()
	rc := reqctx.New(c.request, params, sess)
	c.params = rc.Params
	c.request = c.request.WithContext(reqctx.WithContext(c.request.Context(), rc))
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Param(name string) string {
	if v, ok := c.params[name]; ok {
		return v
	}
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Params() routing.Params {
	if c.params == nil {
		return routing.Params{}
	}
	return c.params
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	if v := c.request.URL.Query().Get(name); v != "" {
		return v
	}
	return defaultValue
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	return c.request.FormFile(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) IsHTMX() bool {
	return htmx.IsHTMX(c.request)
}

func (c *requestContext) IsPartial() bool {
	return c.IsHTMX() || c.request.URL.Query().Get(PartialParam) == "yes"
}

func (c *requestContext) Session() auth.Session {
	if c.session != nil {
		return *c.session
	}
	sess := auth.Guest()
	if rc, err := reqctx.From(c.request.Context()); err == nil {
		sess = rc.Session
	} else if c.authManager != nil {
		sess = c.authManager.SessionFromRequest(c.request)
	}
	c.session = &sess
	return sess
}

func (c *requestContext) UserID() string {
	return c.Session().UserID()
}

func (c *requestContext) IsAuthenticated() bool {
	return c.Session().IsAuthenticated()
}

func (c *requestContext) IsCurrentUser(id string) bool {
	uid := c.UserID()
	return uid != "" && uid == id
}

func (c *requestContext) SignIn(identity auth.Identity) error {
	if c.authManager == nil {
		return auth.ErrNotConfigured
	}
	// Drop any previous session so a fixed cookie cannot be reused.
	if c.Session().IsAuthenticated() {
		c.authManager.DestroySession(c.request)
	}
	ck, err := c.authManager.CreateSession(c.Context(), c.request, identity)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	http.SetCookie(c.response, ck)
	sess := auth.NewSession("", identity)
	c.session = &sess
	return nil
}

func (c *requestContext) SignOut() error {
	if c.authManager == nil {
		return auth.ErrNotConfigured
	}
	http.SetCookie(c.response, c.authManager.DestroySession(c.request))
	guest := auth.Guest()
	c.session = &guest
	return nil
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	htmx.RedirectWithStatus(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

// Render writes component with code. The ResponseWriter turns non-200
// statuses into 200 for htmx requests so the swap still happens.
func (c *requestContext) Render(code int, component Component, opts ...htmx.RenderOption) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")

	var cfg *htmx.Config
	if len(opts) > 0 && c.IsHTMX() {
		cfg = htmx.NewConfig(opts...)
		cfg.ApplyHeaders(c.response)
	}

	c.response.WriteHeader(code)

	if err := component.Render(c.request.Context(), c.response); err != nil {
		return err
	}

	if cfg != nil {
		for _, oob := range cfg.OOBComponents {
			if err := oob.Render(c.request.Context(), c.response); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *requestContext) RenderPartial(code int, fullPage, partial Component, opts ...htmx.RenderOption) error {
	if c.IsHTMX() {
		return c.Render(code, partial, opts...)
	}
	return c.Render(code, fullPage)
}

func (c *requestContext) Bind(v any) (ValidationErrors, error) {
	return c.bindAndValidate(binder.Form(), v, "bind form")
}

func (c *requestContext) BindQuery(v any) (ValidationErrors, error) {
	return c.bindAndValidate(binder.Query(), v, "bind query")
}

func (c *requestContext) BindJSON(v any) (ValidationErrors, error) {
	return c.bindAndValidate(binder.JSON(), v, "bind json")
}

func (c *requestContext) bindAndValidate(bind binder.Func, v any, label string) (ValidationErrors, error) {
	if err := bind(c.request, v); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	if err := sanitizer.SanitizeStruct(v); err != nil {
		return nil, fmt.Errorf("sanitize: %w", err)
	}
	if err := validator.ValidateStruct(v); err != nil {
		if ve := validator.ExtractValidationErrors(err); ve != nil {
			return ve, nil
		}
		return nil, fmt.Errorf("validate: %w", err)
	}
	return nil, nil
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.cookieManager.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.cookieManager.Set(c.response, name, value, maxAge)
}

func (c *requestContext) DeleteCookie(name string) {
	c.cookieManager.Delete(c.response, name)
}

func (c *requestContext) CookieSigned(name string) (string, error) {
	return c.cookieManager.GetSigned(c.request, name)
}

func (c *requestContext) SetCookieSigned(name, value string, maxAge int) error {
	return c.cookieManager.SetSigned(c.response, name, value, maxAge)
}

func (c *requestContext) Flash(key string, dest any) error {
	return c.cookieManager.Flash(c.response, c.request, key, dest)
}

func (c *requestContext) SetFlash(key string, value any) error {
	return c.cookieManager.SetFlash(c.response, key, value)
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.responseWriter
}

func (c *requestContext) Enqueue(name string, payload any, opts ...job.EnqueueOption) error {
	if c.jobs == nil {
		return job.ErrNotConfigured
	}
	return c.jobs.Enqueue(c.Context(), name, payload, opts...)
}

func (c *requestContext) EnqueueTx(tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error {
	if c.jobs == nil {
		return job.ErrNotConfigured
	}
	return c.jobs.EnqueueTx(c.Context(), tx, name, payload, opts...)
}

func (c *requestContext) Storage() (storage.Storage, error) {
	if c.storage == nil {
		return nil, storage.ErrNotConfigured
	}
	return c.storage, nil
}

func (c *requestContext) Upload(fh *multipart.FileHeader, policy storage.Policy) (storage.Object, error) {
	if c.storage == nil {
		return storage.Object{}, storage.ErrNotConfigured
	}
	return storage.Upload(c.Context(), c.storage, fh, policy)
}

func (c *requestContext) DeleteFile(key string) error {
	if c.storage == nil {
		return storage.ErrNotConfigured
	}
	return c.storage.Delete(c.Context(), key)
}
