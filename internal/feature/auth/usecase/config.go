package usecase

import "time"

// Config holds the tunables of the auth usecases.
type Config struct {
	AccessTokenTTL       time.Duration // lifetime of bearer tokens
	SessionTTL           time.Duration // idle time after which a device session is dead
	MaxSessions          int           // concurrent live sessions per user
	MaxFailedAttempts    int           // failed logins before lockout
	LockDuration         time.Duration // lockout window
	ResetTokenTTL        time.Duration // password reset token lifetime
	MinPasswordLength    int
	RequireVerifiedEmail bool
	PublicBaseURL        string // used to build links in notification emails
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		AccessTokenTTL:       time.Hour,
		SessionTTL:           24 * time.Hour,
		MaxSessions:          4,
		MaxFailedAttempts:    5,
		LockDuration:         2 * time.Hour,
		ResetTokenTTL:        10 * time.Minute,
		MinPasswordLength:    8,
		RequireVerifiedEmail: true,
		PublicBaseURL:        "http://localhost:8080",
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.AccessTokenTTL <= 0 {
		c.AccessTokenTTL = d.AccessTokenTTL
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = d.SessionTTL
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = d.MaxSessions
	}
	if c.MaxFailedAttempts <= 0 {
		c.MaxFailedAttempts = d.MaxFailedAttempts
	}
	if c.LockDuration <= 0 {
		c.LockDuration = d.LockDuration
	}
	if c.ResetTokenTTL <= 0 {
		c.ResetTokenTTL = d.ResetTokenTTL
	}
	if c.MinPasswordLength <= 0 {
		c.MinPasswordLength = d.MinPasswordLength
	}
	if c.PublicBaseURL == "" {
		c.PublicBaseURL = d.PublicBaseURL
	}
	return c
}
