// Package jwtmw issues and verifies HS256 bearer tokens and provides the gin
// middleware that authenticates requests with them.
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"auth_backend/internal/feature/auth/domain"
)

// EnvKeyJWTSecret is the environment variable holding the signing secret.
const EnvKeyJWTSecret = "JWT_SECRET"

// minSecretLength is the shortest HS256 secret accepted.
const minSecretLength = 32

// Claims are the verified contents of a bearer token.
type Claims struct {
	UserID    string
	ID        string // jti
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and verifies bearer tokens with a shared HMAC secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec creates a Codec. The secret must be at least 32 bytes.
func NewCodec(secret string) (*Codec, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", minSecretLength)
	}
	return &Codec{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs a token for userID that expires after ttl. The returned expiry
// is the one encoded in the token (whole seconds).
func (c *Codec) Issue(userID string, ttl time.Duration) (string, time.Time, error) {
	now := c.now()
	exp := jwt.NewNumericDate(now.Add(ttl))
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: exp,
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp.Time, nil
}

// Verify checks the signature, algorithm and expiry of token. It returns
// domain.ErrTokenExpired for a well-formed token past its expiry and
// domain.ErrTokenInvalid for anything else that fails.
func (c *Codec) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, domain.ErrTokenMissing
	}

	var rc jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &rc, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if rc.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrTokenInvalid)
	}

	claims := &Claims{UserID: rc.Subject, ID: rc.ID, ExpiresAt: rc.ExpiresAt.Time}
	if rc.IssuedAt != nil {
		claims.IssuedAt = rc.IssuedAt.Time
	}
	return claims, nil
}
