// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"auth_backend/internal/feature/auth/usecase"
)

// CachingRevocationStore decorates a RevocationStore with a Redis read-through
// cache. The database stays authoritative: Redis only ever answers "revoked",
// and any miss or Redis failure falls through to the inner store.
type CachingRevocationStore struct {
	inner     usecase.RevocationStore
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	now       func() time.Time
}

var _ usecase.RevocationStore = (*CachingRevocationStore)(nil)

// NewCachingRevocationStore decorates a RevocationStore with Redis caching.
// ttl bounds how long a hit found in the database is cached; it defaults to
// 1 hour. If namespace is empty, it uses "revoked".
func NewCachingRevocationStore(rdb *redis.Client, ttl time.Duration, inner usecase.RevocationStore, namespace string) *CachingRevocationStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if namespace == "" {
		namespace = "revoked"
	}
	return &CachingRevocationStore{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		now:       time.Now,
	}
}

// Insert records the hash in the database, then in Redis until the token expires.
func (c *CachingRevocationStore) Insert(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	if err := c.inner.Insert(ctx, tokenHash, expiresAt); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	_ = c.rdb.Set(ctx, c.cacheKey(tokenHash), "1", TTLUntil(expiresAt, c.now())).Err() // Best effort
	return nil
}

// Exists checks Redis first, then falls back to the database.
// Negative answers are never cached: a concurrent Insert must win.
func (c *CachingRevocationStore) Exists(ctx context.Context, tokenHash string) (bool, error) {
	if c.rdb == nil {
		return c.inner.Exists(ctx, tokenHash)
	}

	key := c.cacheKey(tokenHash)

	// 1) Check cache
	err := c.rdb.Get(ctx, key).Err()
	if err == nil {
		return true, nil
	}
	cacheDown := !errors.Is(err, redis.Nil)

	// 2) Fallback to database
	revoked, err := c.inner.Exists(ctx, tokenHash)
	if err != nil {
		return false, err
	}

	// 3) Store hit in cache (best effort)
	if revoked && !cacheDown {
		_ = c.rdb.Set(ctx, key, "1", c.ttl).Err()
	}
	return revoked, nil
}

// DeleteExpired purges the database. Redis keys expire on their own.
func (c *CachingRevocationStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return c.inner.DeleteExpired(ctx, now)
}

// cacheKey generates the cache key for a token hash.
func (c *CachingRevocationStore) cacheKey(tokenHash string) string {
	return c.namespace + ":" + safe(tokenHash)
}
