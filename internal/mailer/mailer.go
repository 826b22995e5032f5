// Package mailer sends transactional email over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	FromName string
}

// Enabled reports whether enough settings are present to send mail.
func (c Config) Enabled() bool { return c.Host != "" && c.User != "" }

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends one message per call, opening a fresh SMTP session each
// time.
type SMTPMailer struct {
	from     string
	fromName string
	dialer   sender
}

// New returns a mailer for cfg.
func New(cfg Config) *SMTPMailer {
	return &SMTPMailer{
		from:     cfg.User,
		fromName: cfg.FromName,
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

// Send delivers an HTML email to a single recipient.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if to == "" {
		return errors.New("mailer: empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	// gomail has no context support; a hung session is abandoned when ctx
	// ends and its goroutine exits once the connection times out.
	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()
	select {
	case <-ctx.Done():
		return fmt.Errorf("mailer: send to %s: %w", to, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mailer: send to %s: %w", to, err)
		}
		return nil
	}
}

// Disabled is used when SMTP is not configured.  Every send fails, so the
// reminder sweep keeps the flag unset and retries once SMTP is back.
type Disabled struct{}

// ErrDisabled is returned by Disabled.Send.
var ErrDisabled = errors.New("mailer: smtp not configured")

func (Disabled) Send(context.Context, string, string, string) error { return ErrDisabled }
