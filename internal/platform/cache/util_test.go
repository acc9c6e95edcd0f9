package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLUntil(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      time.Duration
	}{
		{name: "future expiry", expiresAt: now.Add(90 * time.Minute), want: 90 * time.Minute},
		{name: "sub-second remainder is rounded up to the minimum", expiresAt: now.Add(300 * time.Millisecond), want: time.Second},
		{name: "already expired", expiresAt: now.Add(-time.Hour), want: time.Second},
		{name: "exactly now", expiresAt: now, want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TTLUntil(tt.expiresAt, now))
		})
	}
}

func TestSafe(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a_b_c", safe("a b:c"))
	assert.Equal(t, "abc123", safe("abc123"))
}
