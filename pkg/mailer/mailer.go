// Package mailer renders markdown email templates and hands the result to
// a delivery provider.
//
// A template is a markdown file with optional YAML frontmatter. The body is
// a text/template executed with the send data; the rendered markdown is the
// plain-text part and, converted by goldmark, the HTML part wrapped in a
// layout from layouts/. "[!button|Label](url)" renders a call-to-action
// button. The frontmatter Subject may use template actions too:
//
//	---
//	Subject: Welcome, {{ .Name }}
//	---
//	# Hi {{ .Name }}
//
//	[!button|Sign in]({{ .SignInURL }})
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	texttemplate "text/template"
)

var (
	ErrNoRecipient      = errors.New("mailer: no recipient")
	ErrTemplateNotFound = errors.New("mailer: template not found")
	ErrLayoutNotFound   = errors.New("mailer: layout not found")
	ErrRenderFailed     = errors.New("mailer: render failed")
	ErrSendFailed       = errors.New("mailer: send failed")
)

// Email is a rendered message ready for a Sender.
type Email struct {
	Subject string
	HTML    string
	Text    string
	// From overrides the provider's default sender.
	From    string
	ReplyTo string
	To      []string
}

// Sender delivers emails.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Recipient formats an address as "Name <email>". Names with address
// specials are quoted.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	if strings.ContainsAny(name, `"<>,@;:`) {
		return (&mail.Address{Name: name, Address: email}).String()
	}
	return name + " <" + email + ">"
}

// Config holds mailer defaults.
type Config struct {
	// FallbackSubject is used when neither the call nor the template sets one.
	FallbackSubject string `yaml:"fallback_subject"`
	// DefaultLayout is the file under layouts/ wrapping every template.
	DefaultLayout string `yaml:"default_layout"`
}

// SendParams describes one templated email.
type SendParams struct {
	Data     any
	To       string
	Template string
	// Subject overrides the template's frontmatter subject.
	Subject string
	// Layout overrides Config.DefaultLayout.
	Layout  string
	ReplyTo string
}

// Mailer renders templates and sends them.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	config   Config
}

func New(sender Sender, renderer *Renderer, cfg Config) *Mailer {
	return &Mailer{sender: sender, renderer: renderer, config: cfg}
}

// Send renders p.Template and delivers it to p.To. The subject is taken
// from p.Subject, then the template frontmatter, then the fallback.
func (m *Mailer) Send(ctx context.Context, p SendParams) error {
	if p.To == "" {
		return ErrNoRecipient
	}
	layout := p.Layout
	if layout == "" {
		layout = m.config.DefaultLayout
	}

	msg, err := m.renderer.Render(layout, p.Template, p.Data)
	if err != nil {
		return err
	}

	subject := p.Subject
	if subject == "" {
		subject = msg.Subject
	}
	if subject == "" {
		subject = m.config.FallbackSubject
	}
	subject, err = expand(subject, p.Data)
	if err != nil {
		return fmt.Errorf("%w: subject: %w", ErrRenderFailed, err)
	}

	email := &Email{
		To:      []string{p.To},
		Subject: subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: p.ReplyTo,
	}
	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

func expand(s string, data any) (string, error) {
	t, err := texttemplate.New("subject").Parse(s)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
