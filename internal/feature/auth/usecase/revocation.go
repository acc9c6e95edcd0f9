package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"auth_backend/internal/platform/securetoken"
)

// RevocationLedger is the blacklist of explicitly invalidated bearer tokens.
// Tokens are stored by lookup hash; an entry outlives the token's own expiry
// only until the next prune.
type RevocationLedger struct {
	store   RevocationStore
	metrics Metrics
	now     func() time.Time
}

// NewRevocationLedger creates a ledger over store. metrics may be nil.
func NewRevocationLedger(store RevocationStore, metrics Metrics) *RevocationLedger {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &RevocationLedger{store: store, metrics: metrics, now: time.Now}
}

// Revoke records token as invalid until expiresAt. A token that has already
// expired needs no entry: signature verification rejects it on its own.
func (l *RevocationLedger) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if token == "" {
		return nil
	}
	if !expiresAt.After(l.now()) {
		return nil
	}
	if err := l.store.Insert(ctx, securetoken.HashForLookup(token), expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	l.metrics.TokensRevoked(1)
	return nil
}

// IsRevoked reports whether token has been revoked. A store failure is
// returned as an error and must never be treated as "not revoked".
func (l *RevocationLedger) IsRevoked(ctx context.Context, token string) (bool, error) {
	revoked, err := l.store.Exists(ctx, securetoken.HashForLookup(token))
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return revoked, nil
}

// Prune purges entries whose tokens have naturally expired.
func (l *RevocationLedger) Prune(ctx context.Context) (int64, error) {
	n, err := l.store.DeleteExpired(ctx, l.now())
	if err != nil {
		return 0, fmt.Errorf("failed to prune revoked tokens: %w", err)
	}
	return n, nil
}

// RunSweeper prunes the ledger every interval until ctx is cancelled.
// Missing a sweep only accumulates dead entries; it never causes a revoked
// token to be accepted.
func (l *RevocationLedger) RunSweeper(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := l.Prune(ctx)
			if err != nil {
				logger.Error("revocation sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("revocation sweep", "purged", n)
			}
		}
	}
}
