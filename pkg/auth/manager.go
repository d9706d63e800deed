package auth

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/mwm/pkg/logger"
	"github.com/dmitrymomot/mwm/pkg/session"
)

// Default session configuration.
const (
	DefaultCookieName = "__sid"
	DefaultMaxAge     = 86400 * 30 // 30 days

	touchInterval = time.Minute
)

// IdentityLookup resolves the user owning a session.
// It returns ErrUserNotFound for unknown or deactivated users.
type IdentityLookup interface {
	IdentityByID(ctx context.Context, id string) (Identity, error)
}

// Manager handles session lifecycle and cookie management.
type Manager struct {
	store      session.Store
	users      IdentityLookup
	logger     *slog.Logger
	cookieName string
	domain     string
	path       string
	maxAge     int
	sameSite   http.SameSite
	secure     bool
	httpOnly   bool
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// NewManager creates a Manager over store, resolving users through users.
func NewManager(store session.Store, users IdentityLookup, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:      store,
		users:      users,
		logger:     logger.NewNope(),
		cookieName: DefaultCookieName,
		maxAge:     DefaultMaxAge,
		path:       "/",
		httpOnly:   true,
		sameSite:   http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithCookieName sets the session cookie name.
func WithCookieName(name string) ManagerOption {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithMaxAge sets the session lifetime.
func WithMaxAge(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.maxAge = int(d / time.Second)
		}
	}
}

// WithCookieDomain sets the session cookie domain.
func WithCookieDomain(domain string) ManagerOption {
	return func(m *Manager) {
		m.domain = domain
	}
}

// WithSecure sets the session cookie Secure flag.
func WithSecure(secure bool) ManagerOption {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithSameSite sets the session cookie SameSite attribute.
func WithSameSite(sameSite http.SameSite) ManagerOption {
	return func(m *Manager) {
		m.sameSite = sameSite
	}
}

// WithLogger sets the logger for session events.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// CookieName returns the configured cookie name.
func (m *Manager) CookieName() string { return m.cookieName }

// CreateSession persists a new session for identity and returns the cookie
// that carries it.
func (m *Manager) CreateSession(ctx context.Context, r *http.Request, identity Identity) (*http.Cookie, error) {
	sess, err := session.New(identity.ID, time.Duration(m.maxAge)*time.Second)
	if err != nil {
		return nil, err
	}
	if r != nil {
		sess.IP = clientIP(r)
		sess.UserAgent = r.UserAgent()
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	m.logger.InfoContext(ctx, "session created",
		slog.String("session_id", sess.ID),
		slog.String("user_id", identity.ID),
	)
	return m.cookie(sess.Token, m.maxAge), nil
}

// SessionFromRequest resolves the request's session.
// A missing, unknown, expired or orphaned session yields a guest session.
func (m *Manager) SessionFromRequest(r *http.Request) Session {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return Guest()
	}
	ctx := r.Context()

	sess, err := m.store.Get(ctx, c.Value)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) && !errors.Is(err, session.ErrExpired) && !errors.Is(err, session.ErrInvalidToken) {
			m.logger.WarnContext(ctx, "session lookup failed", slog.Any("error", err))
		}
		return Guest()
	}

	identity, err := m.users.IdentityByID(ctx, sess.UserID)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			m.logger.WarnContext(ctx, "session user lookup failed",
				slog.String("session_id", sess.ID),
				slog.Any("error", err),
			)
		}
		return Guest()
	}

	if time.Since(sess.LastActiveAt) > touchInterval {
		if err := m.store.Touch(ctx, sess.ID, time.Now()); err != nil {
			m.logger.WarnContext(ctx, "session touch failed", slog.Any("error", err))
		}
	}
	return NewSession(sess.ID, identity)
}

// DestroySession removes the request's session from the store (best effort)
// and returns a cookie that clears it in the browser.
func (m *Manager) DestroySession(r *http.Request) *http.Cookie {
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		ctx := r.Context()
		if sess, err := m.store.Get(ctx, c.Value); err == nil {
			if err := m.store.Delete(ctx, sess.ID); err != nil {
				m.logger.WarnContext(ctx, "session delete failed", slog.Any("error", err))
			}
		}
	}
	return m.cookie("", -1)
}

// DestroyUserSessions signs a user out everywhere.
func (m *Manager) DestroyUserSessions(ctx context.Context, userID string) error {
	return m.store.DeleteByUserID(ctx, userID)
}

// PurgeExpired deletes expired sessions.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, time.Now())
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
