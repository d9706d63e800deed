package mailer

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/mwm/pkg/logger"
)

// LogSender writes emails to a logger instead of delivering them.
// It stands in for a real provider in development.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender returns a Sender that logs every email at INFO.
func NewLogSender(l *slog.Logger) *LogSender {
	if l == nil {
		l = logger.NewNope()
	}
	return &LogSender{logger: l}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipient
	}
	s.logger.InfoContext(ctx, "email not delivered, no provider configured",
		slog.Any("to", email.To),
		slog.String("subject", email.Subject),
		slog.String("text", email.Text),
	)
	return nil
}
