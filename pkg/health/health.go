// Package health serves the liveness and readiness endpoints.
//
// Liveness answers as long as the process runs. Readiness runs every
// registered check in parallel under one timeout and answers 503 when any
// of them fails. Both reply "OK" as text, or JSON when the client asks for
// it with Accept: application/json or ?format=json.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mwm/pkg/logger"
)

// DefaultTimeout bounds a readiness run.
const DefaultTimeout = 5 * time.Second

// Check statuses.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc reports a dependency as unavailable by returning an error.
type CheckFunc func(ctx context.Context) error

// Checks maps check names to their functions.
type Checks map[string]CheckFunc

// Report is the result of a readiness run.
type Report struct {
	Checks map[string]Result `json:"checks,omitempty"`
	Status string            `json:"status"`
}

// Result is the outcome of one check.
type Result struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool { return r.Status == StatusHealthy }

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures Readiness.
type Option func(*config)

func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failed checks as warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run executes checks in parallel and collects their results.
func Run(ctx context.Context, checks Checks, timeout time.Duration) Report {
	if len(checks) == 0 {
		return Report{Status: StatusHealthy}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		g       errgroup.Group
		results = make(map[string]Result, len(checks))
		status  = StatusHealthy
	)
	for name, check := range checks {
		g.Go(func() error {
			res := Result{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				res = Result{Status: StatusUnhealthy, Error: err.Error()}
			}
			mu.Lock()
			defer mu.Unlock()
			results[name] = res
			if res.Status == StatusUnhealthy {
				status = StatusUnhealthy
			}
			return nil
		})
	}
	_ = g.Wait()
	return Report{Status: status, Checks: results}
}

// Liveness always answers 200.
func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		write(w, r, http.StatusOK, Report{Status: StatusHealthy})
	}
}

// Readiness answers 200 when every check passes and 503 otherwise.
func Readiness(checks Checks, opts ...Option) http.HandlerFunc {
	cfg := &config{logger: logger.NewNope(), timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		rep := Run(r.Context(), checks, cfg.timeout)
		status := http.StatusOK
		if !rep.Healthy() {
			status = http.StatusServiceUnavailable
			for name, res := range rep.Checks {
				if res.Status == StatusUnhealthy {
					cfg.logger.WarnContext(r.Context(), "health check failed",
						slog.String("check", name),
						slog.String("error", res.Error),
					)
				}
			}
		}
		write(w, r, status, rep)
	}
}

func write(w http.ResponseWriter, r *http.Request, status int, rep Report) {
	w.Header().Set("Cache-Control", "no-store")
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(rep)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if rep.Healthy() {
		_, _ = w.Write([]byte("OK"))
		return
	}
	_, _ = w.Write([]byte("Service Unavailable"))
}
