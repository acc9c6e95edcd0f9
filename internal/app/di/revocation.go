// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "auth_backend/internal/feature/auth/adapters"
	"auth_backend/internal/feature/auth/usecase"
	"auth_backend/internal/platform/cache"
)

// revocationCacheTTL bounds how long a revocation found in the database stays cached.
const revocationCacheTTL = time.Hour

// NewRevocationStore creates a RevocationStore implementation.
// The database is always the source of truth. If Redis is available, lookups
// go through a Redis read-through cache.
func NewRevocationStore(db *gorm.DB, rdb *redis.Client) usecase.RevocationStore {
	store := authadapters.NewRevokedTokenGorm(db)
	if rdb == nil {
		return store
	}
	return cache.NewCachingRevocationStore(rdb, revocationCacheTTL, store, "revoked")
}
