// Package services holds the application's use cases: sign-in and sign-up,
// role and permission administration, and profile edits.
//
// Route modules are package-level values, so they reach their dependencies
// through the request context: the Inject middleware stores the Services
// value and From reads it back.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/repository"
	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/logger"
	"github.com/dmitrymomot/mwm/pkg/storage"
)

// ErrNotInjected is returned by From outside a request served with Inject.
var ErrNotInjected = errors.New("services: not available in context")

// Services bundles the dependencies of the page routes.
type Services struct {
	store    repository.Store
	hasher   *auth.Hasher
	authn    *auth.Authenticator
	throttle *auth.Throttle
	storage  storage.Storage
	logger   *slog.Logger
	onSignUp SignUpHook
}

// Option configures Services.
type Option func(*Services)

// WithStorage enables avatar uploads.
func WithStorage(s storage.Storage) Option {
	return func(svc *Services) {
		svc.storage = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(svc *Services) {
		if l != nil {
			svc.logger = l
		}
	}
}

// WithThrottle limits failed sign-in attempts per email.
func WithThrottle(t *auth.Throttle) Option {
	return func(svc *Services) {
		svc.throttle = t
	}
}

// WithSignUpHook runs hook inside the sign-up transaction.
func WithSignUpHook(hook SignUpHook) Option {
	return func(svc *Services) {
		svc.onSignUp = hook
	}
}

// New creates Services on top of store.
func New(store repository.Store, hasher *auth.Hasher, opts ...Option) *Services {
	svc := &Services{
		store:  store,
		hasher: hasher,
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	authOpts := []auth.AuthenticatorOption{auth.WithAuthenticatorLogger(svc.logger)}
	if svc.throttle != nil {
		authOpts = append(authOpts, auth.WithThrottle(svc.throttle))
	}
	svc.authn = auth.NewAuthenticator(svc, hasher, authOpts...)
	return svc
}

// Store returns the underlying repository.
func (s *Services) Store() repository.Store { return s.store }

// Hasher returns the password hasher.
func (s *Services) Hasher() *auth.Hasher { return s.hasher }

type contextKey struct{}

// Inject returns a middleware that makes svc reachable through From.
func Inject(svc *Services) mwm.Middleware {
	return func(next mwm.HandlerFunc) mwm.HandlerFunc {
		return func(c mwm.Context) error {
			c.Set(contextKey{}, svc)
			return next(c)
		}
	}
}

// WithContext returns a copy of ctx carrying svc.
func WithContext(ctx context.Context, svc *Services) context.Context {
	return context.WithValue(ctx, contextKey{}, svc)
}

// From returns the Services stored in ctx.
func From(ctx context.Context) (*Services, error) {
	svc, ok := ctx.Value(contextKey{}).(*Services)
	if !ok || svc == nil {
		return nil, ErrNotInjected
	}
	return svc, nil
}
