package jwtmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"auth_backend/internal/feature/auth/domain"
)

// Context keys set by AuthRequired.
const (
	ContextUserID         = "userID"
	ContextToken          = "token"
	ContextTokenExpiresAt = "tokenExpiresAt"
)

// TokenVerifier verifies a bearer token.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// RevocationChecker reports whether a token has been explicitly invalidated.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AuthRequired returns a Gin middleware function that validates bearer tokens
// and restricts access to authenticated users only.
// A failing revocation lookup answers 500: an unknown blacklist state never lets a request through.
func AuthRequired(verifier TokenVerifier, revocations RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			abortUnauthorized(c, domain.ErrTokenMissing)
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if tokenStr == "" {
			abortUnauthorized(c, domain.ErrTokenMissing)
			return
		}

		// 2. Verify signature and expiry
		claims, err := verifier.Verify(tokenStr)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		// 3. Check the revocation ledger
		revoked, err := revocations.IsRevoked(c.Request.Context(), tokenStr)
		if err != nil {
			slog.Error("revocation check failed", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
			return
		}
		if revoked {
			abortUnauthorized(c, domain.ErrTokenBlacklisted)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextToken, tokenStr)
		c.Set(ContextTokenExpiresAt, claims.ExpiresAt)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, err error) {
	code := "token_invalid"
	switch {
	case errors.Is(err, domain.ErrTokenMissing):
		code = "token_missing"
	case errors.Is(err, domain.ErrTokenExpired):
		code = "token_expired"
	case errors.Is(err, domain.ErrTokenBlacklisted):
		code = "token_blacklisted"
	default:
		err = domain.ErrTokenInvalid
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": err.Error(), "error": code})
}

// UserID returns the authenticated user ID set by AuthRequired.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// Token returns the bearer token and its expiry set by AuthRequired.
func Token(c *gin.Context) (string, time.Time) {
	return c.GetString(ContextToken), c.GetTime(ContextTokenExpiresAt)
}
