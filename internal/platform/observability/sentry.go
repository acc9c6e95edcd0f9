// Package observability wires error reporting, request logging and metrics.
package observability

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry initialises the Sentry client. An empty dsn disables reporting.
// client is used for event delivery; nil means the SDK default.
func InitSentry(dsn, environment string, client *http.Client) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
		HTTPClient:       client,
	})
}

// FlushSentry waits for buffered events to be delivered.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
