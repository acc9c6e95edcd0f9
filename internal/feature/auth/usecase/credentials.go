package usecase

import (
	"context"
	"errors"
	"time"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/platform/securetoken"
)

// LockoutPolicy implements failed-login lockout on the user record.
type LockoutPolicy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// Check returns *AccountLockedError while u is inside a lockout window. A
// window that has elapsed is cleared together with the failure counter, so
// the current attempt starts from zero.
func (p LockoutPolicy) Check(u *entity.User, now time.Time) error {
	if u.LockedUntil == nil {
		return nil
	}
	if u.IsLocked(now) {
		return &AccountLockedError{Until: *u.LockedUntil}
	}
	p.Reset(u)
	return nil
}

// RegisterFailure counts one failed password comparison and locks the
// account once the counter reaches MaxAttempts. It reports whether the
// account is now locked.
func (p LockoutPolicy) RegisterFailure(u *entity.User, now time.Time) bool {
	u.FailedAttempts++
	if u.FailedAttempts >= p.MaxAttempts {
		until := now.Add(p.LockDuration)
		u.LockedUntil = &until
		return true
	}
	return false
}

// Reset clears the failure counter and any lock.
func (p LockoutPolicy) Reset(u *entity.User) {
	u.FailedAttempts = 0
	u.LockedUntil = nil
}

// CredentialLifecycle issues and consumes the one-time verification and
// password-reset tokens. Only token hashes are stored on the user record.
type CredentialLifecycle struct {
	users    UserRepository
	resetTTL time.Duration
	now      func() time.Time
}

// NewCredentialLifecycle creates a CredentialLifecycle with the given reset token lifetime.
func NewCredentialLifecycle(users UserRepository, resetTTL time.Duration) *CredentialLifecycle {
	return &CredentialLifecycle{users: users, resetTTL: resetTTL, now: time.Now}
}

// IssueVerificationToken stores a fresh verification hash on u and returns
// the plaintext. The caller persists u.
func (c *CredentialLifecycle) IssueVerificationToken(u *entity.User) (string, error) {
	plain, hash, err := securetoken.Issue()
	if err != nil {
		return "", err
	}
	u.VerificationTokenHash = &hash
	return plain, nil
}

// IssueResetToken stores a fresh reset hash and expiry on u and returns the
// plaintext. The caller persists u.
func (c *CredentialLifecycle) IssueResetToken(u *entity.User) (string, error) {
	plain, hash, err := securetoken.Issue()
	if err != nil {
		return "", err
	}
	expires := c.now().Add(c.resetTTL)
	u.ResetTokenHash = &hash
	u.ResetExpiresAt = &expires
	return plain, nil
}

// VerifyEmail consumes a verification token: the user becomes verified and
// the stored hash is cleared so the same token cannot be used again.
func (c *CredentialLifecycle) VerifyEmail(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}
	hash := securetoken.HashForLookup(token)
	user, err := c.users.FindByHash(ctx, entity.HashFieldVerification, hash)
	if err != nil {
		return nil, collapseLookup(err)
	}

	updated, err := c.users.Update(ctx, user.ID, func(u *entity.User) error {
		if u.VerificationTokenHash == nil || *u.VerificationTokenHash != hash {
			return ErrInvalidOrExpiredToken
		}
		u.IsVerified = true
		u.VerificationTokenHash = nil
		return nil
	})
	if err != nil {
		return nil, collapseLookup(err)
	}
	return updated, nil
}

// ConsumeResetToken redeems a reset token. The stored hash must match and
// not be expired; on success both reset fields are cleared and apply runs in
// the same atomic write, which allows exactly one password change per token.
// Every mismatch, expiry or unknown token fails with ErrInvalidOrExpiredToken.
func (c *CredentialLifecycle) ConsumeResetToken(ctx context.Context, token string, apply func(u *entity.User) error) (*entity.User, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}
	hash := securetoken.HashForLookup(token)
	user, err := c.users.FindByHash(ctx, entity.HashFieldReset, hash)
	if err != nil {
		return nil, collapseLookup(err)
	}

	updated, err := c.users.Update(ctx, user.ID, func(u *entity.User) error {
		if u.ResetTokenHash == nil || *u.ResetTokenHash != hash {
			return ErrInvalidOrExpiredToken
		}
		if u.ResetExpiresAt == nil || !u.ResetExpiresAt.After(c.now()) {
			return ErrInvalidOrExpiredToken
		}
		u.ResetTokenHash = nil
		u.ResetExpiresAt = nil
		if apply != nil {
			return apply(u)
		}
		return nil
	})
	if err != nil {
		return nil, collapseLookup(err)
	}
	return updated, nil
}

// collapseLookup hides whether a token was unknown or stale.
func collapseLookup(err error) error {
	if errors.Is(err, ErrUserNotFound) {
		return ErrInvalidOrExpiredToken
	}
	return err
}
