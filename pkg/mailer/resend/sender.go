// Package resend delivers mailer emails through the Resend API.
package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/mwm/pkg/mailer"
)

// Config holds the API key and default sender.
type Config struct {
	APIKey      string
	SenderEmail string
	SenderName  string
}

// Sender implements mailer.Sender.
type Sender struct {
	client *resend.Client
	from   string
}

func New(cfg Config) *Sender {
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		from:   mailer.Recipient(cfg.SenderName, cfg.SenderEmail),
	}
}

func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if len(email.To) == 0 {
		return mailer.ErrNoRecipient
	}
	from := email.From
	if from == "" {
		from = s.from
	}
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}
