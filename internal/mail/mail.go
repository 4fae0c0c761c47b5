// Package mail sends transactional email over SMTP.
package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Config describes the SMTP relay.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

// New returns an SMTP sender, or a no-op sender when no host is configured.
func New(cfg Config) Sender {
	if cfg.Host == "" {
		return NoopSender{}
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPSender{
		from:   from,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildMessage(s.from, to, subject, htmlBody)
	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return msg
}

// NoopSender drops every message.
type NoopSender struct{}

// Send implements Sender.
func (NoopSender) Send(context.Context, string, string, string) error { return nil }

// WelcomeMessage renders the registration email.
func WelcomeMessage(username string) (subject, body string) {
	return "Welcome to Foodgram",
		fmt.Sprintf("<p>Hi %s,</p><p>your Foodgram account is ready. Start sharing recipes!</p>", username)
}
