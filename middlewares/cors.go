package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/mwm/internal"
)

// DefaultCORSMaxAge is how long browsers may cache a preflight answer.
const DefaultCORSMaxAge = 12 * time.Hour

type corsConfig struct {
	originFunc  func(origin string) bool
	origins     []string
	methods     []string
	headers     []string
	expose      []string
	maxAge      time.Duration
	credentials bool
}

// CORSOption configures the CORS middleware.
type CORSOption func(*corsConfig)

// WithAllowOrigins restricts the allowed origins. "*" allows any origin.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(cfg *corsConfig) {
		cfg.origins = origins
	}
}

// WithAllowOriginFunc decides per origin. It takes precedence over
// WithAllowOrigins.
func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(cfg *corsConfig) {
		cfg.originFunc = fn
	}
}

// WithAllowMethods sets the methods announced in preflight answers.
func WithAllowMethods(methods ...string) CORSOption {
	return func(cfg *corsConfig) {
		cfg.methods = methods
	}
}

// WithAllowHeaders sets the request headers announced in preflight answers.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(cfg *corsConfig) {
		cfg.headers = headers
	}
}

// WithExposeHeaders lists response headers scripts may read, such as
// X-Request-ID.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(cfg *corsConfig) {
		cfg.expose = headers
	}
}

// WithAllowCredentials allows cookies. The request origin is echoed
// instead of "*".
func WithAllowCredentials() CORSOption {
	return func(cfg *corsConfig) {
		cfg.credentials = true
	}
}

// WithMaxAge sets the preflight cache duration. Zero omits the header.
func WithMaxAge(d time.Duration) CORSOption {
	return func(cfg *corsConfig) {
		cfg.maxAge = d
	}
}

// CORS adds Cross-Origin Resource Sharing headers and answers preflight
// requests with 204. Requests from disallowed origins pass through without
// CORS headers, so the browser blocks them.
//
//	r.Group(func(r mwm.Router) {
//	    r.Use(middlewares.CORS(middlewares.WithExposeHeaders("X-Request-ID")))
//	    r.Mount("/api", typedAPI)
//	})
func CORS(opts ...CORSOption) internal.Middleware {
	cfg := &corsConfig{
		origins: []string{"*"},
		methods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		headers: []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		maxAge:  DefaultCORSMaxAge,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	wildcard := cfg.originFunc == nil && slices.Contains(cfg.origins, "*")
	methods := strings.Join(cfg.methods, ", ")
	headers := strings.Join(cfg.headers, ", ")
	expose := strings.Join(cfg.expose, ", ")
	maxAge := strconv.Itoa(int(cfg.maxAge.Seconds()))

	allowed := func(origin string) bool {
		switch {
		case cfg.originFunc != nil:
			return cfg.originFunc(origin)
		case wildcard:
			return true
		default:
			return slices.Contains(cfg.origins, origin)
		}
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			origin := c.Header("Origin")
			if origin == "" || !allowed(origin) {
				return next(c)
			}

			h := c.Response().Header()
			h.Add("Vary", "Origin")
			if cfg.credentials || !wildcard {
				h.Set("Access-Control-Allow-Origin", origin)
			} else {
				h.Set("Access-Control-Allow-Origin", "*")
			}
			if cfg.credentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if expose != "" {
				h.Set("Access-Control-Expose-Headers", expose)
			}

			if c.Request().Method != http.MethodOptions {
				return next(c)
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if cfg.maxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}
