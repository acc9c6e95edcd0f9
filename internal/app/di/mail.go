package di

import (
	"log/slog"

	"auth_backend/internal/feature/auth/usecase"
	"auth_backend/internal/platform/mail"
)

// NewMailer creates the notification sender.
// Without an SMTP host, mails are only written to the log (local development).
func NewMailer(cfg mail.Config, logger *slog.Logger) usecase.Mailer {
	if cfg.Host == "" {
		logger.Warn("SMTP_HOST is not set. Emails will be logged instead of sent.")
		return mail.NewLogSender(logger)
	}
	return mail.NewSMTPSender(cfg)
}
