// Package entity defines the domain entities for the auth feature.
package entity

import (
	"strings"
	"time"
)

// Roles understood by the role gate.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// HashField names a user column that stores a one-way token hash.
// The store only ever indexes hashes, never plaintext tokens.
type HashField string

const (
	HashFieldVerification HashField = "verification_token_hash"
	HashFieldReset        HashField = "reset_token_hash"
	HashFieldRefresh      HashField = "refresh_token_hash"
)

// User is the mutable aggregate owned by the user store.
// Every field is read and written back as a whole by UserRepository.Update.
type User struct {
	// ID is an opaque unique identifier (uuid).
	ID string

	// Email is unique and always stored normalized (see NormalizeEmail).
	Email string

	// PasswordHash is the adaptive hash of the password. Never exposed outward.
	PasswordHash string `json:"-"`

	// Role is used by the set-membership role gate.
	Role string

	IsVerified            bool
	VerificationTokenHash *string `json:"-"`

	ResetTokenHash *string    `json:"-"`
	ResetExpiresAt *time.Time `json:"-"`

	FailedAttempts int
	LockedUntil    *time.Time

	// RefreshTokenHash is the single rotation-token slot of the user.
	RefreshTokenHash *string `json:"-"`

	// Sessions is the ordered list of device sessions, unique by DeviceID.
	Sessions []Session

	// Version is incremented by the store on every successful write.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail lower-cases and trims an e-mail address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsLocked reports whether the account is inside a lockout window at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// HasRole reports whether the user's role is one of roles.
func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
