package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("session: not found")
	ErrExpired      = errors.New("session: expired")
	ErrInvalidToken = errors.New("session: invalid token")
)

// Store persists sessions keyed by the hash of their token. Lookups of an
// empty token fail with ErrInvalidToken; expired rows with ErrExpired.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteByUserID signs a user out everywhere.
	DeleteByUserID(ctx context.Context, userID string) error
	// Touch records activity without loading the session.
	Touch(ctx context.Context, id string, at time.Time) error
	// DeleteExpired removes sessions that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Session is a server-side session record. The cookie carries only Token.
type Session struct {
	CreatedAt    time.Time
	LastActiveAt time.Time
	ExpiresAt    time.Time

	ID        string // Unique identifier (UUID)
	Token     string // Opaque cookie token, never persisted in clear text
	UserID    string // Owner of the session
	IP        string // Client IP address
	UserAgent string // Raw User-Agent header
}

// New creates a session for userID that expires after ttl.
func New(userID string, ttl time.Duration) (*Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		ID:           uuid.NewString(),
		Token:        token,
		UserID:       userID,
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(ttl),
	}, nil
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// NewToken creates a cryptographically secure random token.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken returns the hex SHA-256 digest stores use as the lookup key.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
