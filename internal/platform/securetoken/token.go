// Package securetoken generates opaque one-time tokens and the one-way
// hashes under which they are stored.
//
// Plaintext tokens are handed to the client exactly once; the store only ever
// sees HashForLookup(token), which also serves as the blind lookup key.
package securetoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DefaultBytes is the entropy of tokens produced by Issue.
const DefaultBytes = 32

// Issue returns a new random token and its lookup hash.
func Issue() (plaintext, hash string, err error) {
	return IssueN(DefaultBytes)
}

// IssueN is Issue with an explicit number of random bytes.
func IssueN(n int) (plaintext, hash string, err error) {
	if n < 16 {
		return "", "", fmt.Errorf("token entropy too low: %d bytes", n)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	plaintext = hex.EncodeToString(buf)
	return plaintext, HashForLookup(plaintext), nil
}

// HashForLookup returns the SHA-256 hex digest of value.
func HashForLookup(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
