package usecase

import (
	"context"
	"time"

	"auth_backend/internal/feature/auth/domain/entity"
)

// UserRepository abstracts the persistence layer for user records.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user. It returns ErrEmailAlreadyExists on a duplicate email.
	Create(ctx context.Context, user *entity.User) error

	// FindByID retrieves a user by ID. It returns ErrUserNotFound if absent.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// FindByEmail retrieves a user by normalized email. It returns ErrUserNotFound if absent.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByHash retrieves the user whose field holds hash. It returns ErrUserNotFound if absent.
	FindByHash(ctx context.Context, field entity.HashField, hash string) (*entity.User, error)

	// Update runs an atomic read-modify-write on the user record: it loads the
	// latest snapshot, applies fn and writes the whole record back only if no
	// other writer got in between, retrying fn on conflict. An error returned
	// by fn aborts the update and is returned unchanged.
	Update(ctx context.Context, id string, fn func(user *entity.User) error) (*entity.User, error)

	// Delete removes the user. It returns ErrUserNotFound if absent.
	Delete(ctx context.Context, id string) error
}

// RevocationStore persists revoked bearer tokens by their lookup hash.
type RevocationStore interface {
	// Insert records tokenHash as revoked until expiresAt. Inserting the same hash twice is not an error.
	Insert(ctx context.Context, tokenHash string, expiresAt time.Time) error

	// Exists reports whether tokenHash has been revoked.
	Exists(ctx context.Context, tokenHash string) (bool, error)

	// DeleteExpired purges entries whose expiry is before now and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
