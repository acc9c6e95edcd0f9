// Package config loads the server configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"auth_backend/internal/feature/auth/usecase"
	"auth_backend/internal/platform/db"
	jwtmw "auth_backend/internal/platform/jwt"
	"auth_backend/internal/platform/mail"
	"auth_backend/internal/platform/redis"
)

// Config is the complete server configuration.
type Config struct {
	Env      string
	HTTPAddr string
	LogLevel string
	LogFmt   string

	JWTSecret  string
	BcryptCost int

	Auth  usecase.Config
	DB    db.Config
	Redis redis.Config
	SMTP  mail.Config

	LoginRateLimitMax     int
	LoginRateLimitWindow  time.Duration
	RevocationSweepPeriod time.Duration

	SentryDSN          string
	CORSAllowedOrigins []string
}

// Load reads the configuration. Missing values fall back to defaults; a
// malformed value or a missing JWT secret is an error.
func Load() (Config, error) {
	var errs []error
	p := parser{errs: &errs}

	auth := usecase.DefaultConfig()
	auth.AccessTokenTTL = p.duration("ACCESS_TOKEN_TTL", auth.AccessTokenTTL)
	auth.SessionTTL = p.duration("SESSION_TTL", auth.SessionTTL)
	auth.MaxSessions = p.int("MAX_SESSIONS", auth.MaxSessions)
	auth.MaxFailedAttempts = p.int("LOGIN_MAX_ATTEMPTS", auth.MaxFailedAttempts)
	auth.LockDuration = p.duration("LOGIN_LOCK_DURATION", auth.LockDuration)
	auth.ResetTokenTTL = p.duration("RESET_TOKEN_TTL", auth.ResetTokenTTL)
	auth.MinPasswordLength = p.int("MIN_PASSWORD_LENGTH", auth.MinPasswordLength)
	auth.RequireVerifiedEmail = p.bool("REQUIRE_VERIFIED_EMAIL", auth.RequireVerifiedEmail)
	auth.PublicBaseURL = strings.TrimRight(envOr("PUBLIC_BASE_URL", auth.PublicBaseURL), "/")

	cfg := Config{
		Env:      envOr("APP_ENV", "development"),
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),
		LogLevel: envOr("LOG_LEVEL", "info"),
		LogFmt:   envOr("LOG_FORMAT", "json"),

		JWTSecret:  os.Getenv(jwtmw.EnvKeyJWTSecret),
		BcryptCost: p.int("BCRYPT_COST", 12),

		Auth:  auth,
		DB:    db.LoadConfigFromEnv(),
		Redis: redis.LoadConfigFromEnv(),
		SMTP: mail.Config{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     p.int("SMTP_PORT", 587),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     envOr("SMTP_FROM", "noreply@localhost"),
		},

		LoginRateLimitMax:     p.int("LOGIN_RATE_LIMIT_MAX", 10),
		LoginRateLimitWindow:  p.duration("LOGIN_RATE_LIMIT_WINDOW", time.Minute),
		RevocationSweepPeriod: p.duration("REVOCATION_SWEEP_INTERVAL", time.Hour),

		SentryDSN:          os.Getenv("SENTRY_DSN"),
		CORSAllowedOrigins: splitList(envOr("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("%s is required", jwtmw.EnvKeyJWTSecret))
	}
	if cfg.DB.URL == "" && cfg.DB.Host == "" {
		errs = append(errs, errors.New("DATABASE_URL or DB_HOST is required"))
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is "production".
func (c Config) IsProduction() bool { return c.Env == "production" }

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser collects every malformed value instead of stopping at the first.
type parser struct {
	errs *[]error
}

func (p parser) int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		*p.errs = append(*p.errs, fmt.Errorf("%s: expected a positive integer, got %q", key, v))
		return def
	}
	return n
}

func (p parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*p.errs = append(*p.errs, fmt.Errorf("%s: expected a positive duration, got %q", key, v))
		return def
	}
	return d
}

func (p parser) bool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: expected a boolean, got %q", key, v))
		return def
	}
	return b
}
