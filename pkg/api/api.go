package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/mwm/pkg/logger"
)

// RequestIDHeader is read for an incoming request id and echoed back.
const RequestIDHeader = "X-Request-ID"

// API is a router of typed endpoints. Register every endpoint before the
// first request is served.
type API struct {
	router    chi.Router
	logger    *slog.Logger
	requestID func(*http.Request) string
	doc       func() *Document
	info      Info
	servers   []Server
	ops       []*operation
	mu        sync.Mutex
}

// Option configures an API.
type Option func(*API)

// WithInfo sets the document title, version and description.
func WithInfo(title, version, description string) Option {
	return func(a *API) {
		a.info = Info{Title: title, Version: version, Description: description}
	}
}

// WithServer adds a server URL to the document, such as the mount prefix.
func WithServer(url string) Option {
	return func(a *API) {
		a.servers = append(a.servers, Server{URL: url})
	}
}

// WithLogger sets the logger for failed requests.
func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRequestID overrides how a request id is obtained. The default reads
// X-Request-ID and falls back to a random UUID.
func WithRequestID(fn func(*http.Request) string) Option {
	return func(a *API) {
		if fn != nil {
			a.requestID = fn
		}
	}
}

// WithMiddleware adds chi middleware in front of every endpoint.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *API) {
		a.router.Use(mw...)
	}
}

// New creates an API.
func New(opts ...Option) *API {
	a := &API{
		router:    chi.NewRouter(),
		logger:    logger.NewNope(),
		requestID: headerOrUUID,
		info:      Info{Title: "API", Version: "0.0.0"},
	}
	for _, opt := range opts {
		opt(a)
	}

	a.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: MsgNotFound})
	})
	a.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: MsgMethodNotAllowed})
	})
	a.doc = sync.OnceValue(a.buildDocument)
	return a
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Document returns the OpenAPI description of every registered endpoint.
// It is built once on first use.
func (a *API) Document() *Document {
	return a.doc()
}

// DocumentHandler serves Document as JSON.
func (a *API) DocumentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, a.Document())
	}
}

func (a *API) register(op *operation) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ops = append(a.ops, op)
	a.router.Method(op.method, op.pattern, op.handler)
}

// writeError answers err with the JSON envelope.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := asError(err)
	if !ok {
		a.logger.ErrorContext(r.Context(), "api request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", RequestID(r.Context())),
			slog.Any("error", err),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: MsgInternal})
		return
	}

	status := e.Status
	if status == 0 {
		status = http.StatusBadRequest
	}
	if status >= http.StatusInternalServerError {
		a.logger.ErrorContext(r.Context(), "api request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	if !e.HasDetail() && e.Message != MsgValidationFailed {
		writeJSON(w, status, errorBody{Error: e.Message})
		return
	}

	body := validationBody{
		Error:       e.Message,
		FieldErrors: e.FieldErrors,
		FormErrors:  e.FormErrors,
	}
	if body.FieldErrors == nil {
		body.FieldErrors = map[string][]string{}
	}
	if body.FormErrors == nil {
		body.FormErrors = []string{}
	}
	writeJSON(w, status, body)
}

type requestIDKey struct{}

// RequestID returns the id of the request ctx belongs to, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithRequestIDContext returns a copy of ctx carrying id. Useful in tests
// that call handlers directly.
func WithRequestIDContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func headerOrUUID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
