package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("auth: invalid email or password")

	// ErrInactive is returned when the credentials are valid but the account is disabled.
	ErrInactive = errors.New("auth: account deactivated")

	// ErrThrottled is returned when too many failed attempts were made for an email.
	ErrThrottled = errors.New("auth: too many attempts")

	// ErrUserNotFound is returned by lookups when no user matches.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrInvalidHash is returned when a stored password hash cannot be parsed.
	ErrInvalidHash = errors.New("auth: invalid password hash")

	// ErrNotConfigured is returned when sign-in is attempted without a session manager.
	ErrNotConfigured = errors.New("auth: session manager not configured")

	// ErrIncompatibleVersion is returned for argon2 hashes of another version.
	ErrIncompatibleVersion = errors.New("auth: incompatible argon2 version")
)
