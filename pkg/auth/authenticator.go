package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/mwm/pkg/logger"
)

// Account is what the authenticator needs to know about a user.
type Account struct {
	Identity
	PasswordHash string // empty when the user has no password credential
	Active       bool
}

// AccountLookup finds an account by email.
// It returns ErrUserNotFound when no user matches.
type AccountLookup interface {
	AccountByEmail(ctx context.Context, email string) (Account, error)
}

// Authenticator verifies email and password pairs.
type Authenticator struct {
	accounts AccountLookup
	hasher   *Hasher
	throttle *Throttle
	logger   *slog.Logger
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithThrottle limits failed attempts per email.
func WithThrottle(t *Throttle) AuthenticatorOption {
	return func(a *Authenticator) {
		a.throttle = t
	}
}

// WithAuthenticatorLogger sets the logger.
func WithAuthenticatorLogger(l *slog.Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(accounts AccountLookup, hasher *Hasher, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{accounts: accounts, hasher: hasher, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate returns the identity for valid credentials.
//
// Errors: ErrInvalidCredentials (unknown email, no password or wrong
// password), ErrInactive, ErrThrottled, or a wrapped lookup failure.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	if a.throttle != nil {
		ok, err := a.throttle.Attempt(ctx, email)
		if err != nil {
			a.logger.WarnContext(ctx, "sign-in throttle unavailable", slog.Any("error", err))
		} else if !ok {
			return Identity{}, ErrThrottled
		}
	}

	acc, err := a.accounts.AccountByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return Identity{}, fmt.Errorf("lookup account: %w", err)
		}
		a.hasher.VerifyDummy(password)
		return Identity{}, ErrInvalidCredentials
	}

	if acc.PasswordHash == "" {
		a.hasher.VerifyDummy(password)
		return Identity{}, ErrInvalidCredentials
	}

	ok, err := a.hasher.Verify(password, acc.PasswordHash)
	if err != nil {
		a.logger.ErrorContext(ctx, "stored password hash unreadable",
			slog.String("user_id", acc.ID),
			slog.Any("error", err),
		)
		return Identity{}, ErrInvalidCredentials
	}
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}

	if !acc.Active {
		return Identity{}, ErrInactive
	}

	if a.throttle != nil {
		if err := a.throttle.Reset(ctx, email); err != nil {
			a.logger.WarnContext(ctx, "sign-in throttle reset failed", slog.Any("error", err))
		}
	}
	return acc.Identity, nil
}
