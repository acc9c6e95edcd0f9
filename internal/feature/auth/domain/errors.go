// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Bearer-token failures. They are shared by the token codec, the auth
// middleware and the usecases so that every layer reports the same reason.
var (
	// ErrTokenMissing indicates that no bearer token was presented.
	ErrTokenMissing = errors.New("no token provided")

	// ErrTokenInvalid indicates a malformed, forged or wrongly signed token.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired indicates a well-formed token whose exp has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenBlacklisted indicates a token found in the revocation ledger.
	ErrTokenBlacklisted = errors.New("token has been invalidated")
)
