// Package tasks holds the background jobs of the application.
package tasks

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/mwm/app/repository"
	"github.com/dmitrymomot/mwm/app/services"
	"github.com/dmitrymomot/mwm/pkg/job"
	"github.com/dmitrymomot/mwm/pkg/logger"
	"github.com/dmitrymomot/mwm/pkg/mailer"
)

// Task names.
const (
	SendWelcomeEmail     = "send_welcome_email"
	PurgeExpiredSessions = "purge_expired_sessions"
)

//go:embed emails
var emails embed.FS

// EmailTemplates returns the markdown email templates and their layouts.
func EmailTemplates() fs.FS {
	sub, err := fs.Sub(emails, "emails")
	if err != nil {
		panic(err)
	}
	return sub
}

// WelcomePayload is the argument of SendWelcomeEmail.
type WelcomePayload struct {
	UserID string `json:"user_id"`
}

// SendWelcome emails a greeting to a new user.
type SendWelcome struct {
	mailer  *mailer.Mailer
	users   UserLookup
	baseURL string
}

// UserLookup loads the recipient of an email.
type UserLookup interface {
	UserByID(ctx context.Context, id string) (repository.User, error)
}

func NewSendWelcome(m *mailer.Mailer, users UserLookup, baseURL string) *SendWelcome {
	return &SendWelcome{mailer: m, users: users, baseURL: baseURL}
}

func (t *SendWelcome) Name() string { return SendWelcomeEmail }

func (t *SendWelcome) Handle(ctx context.Context, p WelcomePayload) error {
	u, err := t.users.UserByID(ctx, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		// Deleted before the job ran.
		return nil
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	return t.mailer.Send(ctx, mailer.SendParams{
		To:       mailer.Recipient(u.Name, u.Email),
		Template: "welcome.md",
		Data: map[string]string{
			"Name":      u.Name,
			"Email":     u.Email,
			"SignInURL": t.baseURL + "/identity/sign-in",
		},
	})
}

// SessionPurger removes expired sessions. *auth.Manager implements it.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// PurgeSessions deletes expired sessions every hour.
type PurgeSessions struct {
	sessions SessionPurger
	logger   *slog.Logger
}

func NewPurgeSessions(sessions SessionPurger, log *slog.Logger) *PurgeSessions {
	if log == nil {
		log = logger.NewNope()
	}
	return &PurgeSessions{sessions: sessions, logger: log}
}

func (t *PurgeSessions) Name() string     { return PurgeExpiredSessions }
func (t *PurgeSessions) Schedule() string { return "@hourly" }

func (t *PurgeSessions) Handle(ctx context.Context) error {
	n, err := t.sessions.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("purge sessions: %w", err)
	}
	if n > 0 {
		t.logger.InfoContext(ctx, "expired sessions purged", slog.Int64("count", n))
	}
	return nil
}

// Enqueuer dispatches jobs. *job.Enqueuer and *job.Manager implement it.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error
	EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error
}

// WelcomeOnSignUp returns a sign-up hook that queues the welcome email in
// the sign-up transaction. A user gets at most one welcome email a day.
func WelcomeOnSignUp(enq Enqueuer) services.SignUpHook {
	return func(ctx context.Context, tx pgx.Tx, user repository.User) error {
		payload := WelcomePayload{UserID: user.ID}
		opts := []job.EnqueueOption{job.UniqueFor(24 * time.Hour), job.UniqueKey(user.ID), job.MaxAttempts(5)}
		if tx == nil {
			return enq.Enqueue(ctx, SendWelcomeEmail, payload, opts...)
		}
		return enq.EnqueueTx(ctx, tx, SendWelcomeEmail, payload, opts...)
	}
}

// Options registers every task with a job manager.
func Options(m *mailer.Mailer, users UserLookup, baseURL string, sessions SessionPurger, log *slog.Logger) []job.Option {
	return []job.Option{
		job.WithTask[WelcomePayload](NewSendWelcome(m, users, baseURL)),
		job.WithScheduledTask(NewPurgeSessions(sessions, log)),
	}
}
