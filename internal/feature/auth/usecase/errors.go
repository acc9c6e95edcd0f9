// Package usecase implements the business logic for the auth feature.
package usecase

import (
	"errors"
	"fmt"
	"time"

	"auth_backend/internal/feature/auth/domain/entity"
)

var (
	// ErrUserNotFound is returned when a user cannot be found by email, ID or token hash.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	// The two cases are never distinguished.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrWeakPassword is returned when a password does not meet the minimum requirements.
	ErrWeakPassword = errors.New("password does not meet requirements")

	// ErrEmailNotVerified is returned on login before the email address was verified.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrAccountLocked is the sentinel wrapped by AccountLockedError.
	ErrAccountLocked = errors.New("account locked")

	// ErrMaxSessions is the sentinel wrapped by MaxSessionsError.
	ErrMaxSessions = errors.New("maximum number of active sessions reached")

	// ErrSessionNotFound is returned when the device has no session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when the device's session exists but is no longer live.
	ErrSessionExpired = errors.New("session has expired")

	// ErrInvalidRefreshToken is returned when a refresh token does not match the user's rotation slot.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrInvalidOrExpiredToken is returned by the reset and verification flows.
	// "Not found" and "expired" are deliberately collapsed into this one error.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// ErrConcurrentUpdate is returned by UserRepository.Update when the
	// optimistic-concurrency retries are exhausted.
	ErrConcurrentUpdate = errors.New("concurrent update of user record")
)

// MaxSessionsError is returned when a new device is refused because the user
// already has the maximum number of live sessions. Sessions is the current
// list so the client can choose what to evict.
type MaxSessionsError struct {
	Limit    int
	Sessions []entity.Session
}

func (e *MaxSessionsError) Error() string {
	return fmt.Sprintf("%s (%d)", ErrMaxSessions.Error(), e.Limit)
}

func (e *MaxSessionsError) Unwrap() error { return ErrMaxSessions }

// AccountLockedError is returned while the account is inside a lockout window.
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("%s until %s", ErrAccountLocked.Error(), e.Until.UTC().Format(time.RFC3339))
}

func (e *AccountLockedError) Unwrap() error { return ErrAccountLocked }
