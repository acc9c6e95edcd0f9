package di

import (
	"time"

	"auth_backend/internal/platform/config"
	infrahttp "auth_backend/internal/platform/http"
	"auth_backend/internal/platform/observability"
)

// sentryTimeout はSentryへのイベント送信1回あたりのタイムアウトです。
const sentryTimeout = 5 * time.Second

// InitSentry initializes Sentry with a dedicated HTTP client.
// It is a no-op when SENTRY_DSN is empty.
func InitSentry(cfg config.Config) error {
	return observability.InitSentry(cfg.SentryDSN, cfg.Env, infrahttp.NewHTTPClient(sentryTimeout))
}
