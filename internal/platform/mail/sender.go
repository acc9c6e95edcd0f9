// Package mail sends notification emails.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Config holds the SMTP settings. An empty Host selects the log sender.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// dialer is the part of gomail.Dialer used by SMTPSender.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers HTML mail over SMTP.
type SMTPSender struct {
	from   string
	dialer dialer
}

// NewSMTPSender creates a sender for cfg.
func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

// Send delivers one message. gomail has no context support, so the SMTP
// conversation runs in its own goroutine and Send returns when ctx is done.
// An abandoned conversation ends when the server drops the connection.
func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}

// LogSender writes messages to the log instead of sending them. Used when no
// SMTP host is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs the recipient at Info. The body carries one-time links, so it
// only appears at Debug.
func (s *LogSender) Send(ctx context.Context, to, subject, html string) error {
	s.logger.InfoContext(ctx, "email (not sent, SMTP not configured)", "to", to, "subject", subject)
	s.logger.DebugContext(ctx, "email body", "to", to, "body", html)
	return nil
}
