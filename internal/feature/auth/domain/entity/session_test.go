package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_IsLive(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	ttl := 24 * time.Hour

	tests := []struct {
		name       string
		lastActive time.Time
		want       bool
	}{
		{"just touched", now, true},
		{"one hour ago", now.Add(-time.Hour), true},
		{"exactly ttl ago", now.Add(-ttl), false},
		{"older than ttl", now.Add(-ttl - time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := Session{DeviceID: "d", LastActiveAt: tt.lastActive}
			assert.Equal(t, tt.want, s.IsLive(now, ttl))
		})
	}
}

func TestUser_TouchSession(t *testing.T) {
	t.Parallel()

	now := time.Now()
	u := &User{}

	u.TouchSession("device-1", "agent-a", now.Add(-time.Hour))
	u.TouchSession("device-2", "agent-b", now.Add(-time.Minute))
	require.Len(t, u.Sessions, 2)

	// refreshing an existing device keeps the slot and order
	u.TouchSession("device-1", "agent-c", now)
	require.Len(t, u.Sessions, 2)
	assert.Equal(t, "device-1", u.Sessions[0].DeviceID)
	assert.Equal(t, now, u.Sessions[0].LastActiveAt)
	assert.Equal(t, "agent-c", u.Sessions[0].UserAgent)

	// an empty user agent does not wipe the stored one
	u.TouchSession("device-2", "", now)
	assert.Equal(t, "agent-b", u.Sessions[1].UserAgent)
}

func TestUser_PruneSessions(t *testing.T) {
	t.Parallel()

	now := time.Now()
	ttl := 24 * time.Hour
	u := &User{Sessions: []Session{
		{DeviceID: "stale-1", LastActiveAt: now.Add(-25 * time.Hour)},
		{DeviceID: "live-1", LastActiveAt: now.Add(-time.Hour)},
		{DeviceID: "stale-2", LastActiveAt: now.Add(-48 * time.Hour)},
		{DeviceID: "live-2", LastActiveAt: now},
	}}

	pruned := u.PruneSessions(now, ttl)

	require.Len(t, pruned, 2)
	assert.Equal(t, "stale-1", pruned[0].DeviceID)
	assert.Equal(t, "stale-2", pruned[1].DeviceID)
	require.Len(t, u.Sessions, 2)
	assert.Equal(t, "live-1", u.Sessions[0].DeviceID)
	assert.Equal(t, "live-2", u.Sessions[1].DeviceID)

	assert.Empty(t, u.PruneSessions(now, ttl))
}

func TestUser_RemoveSession(t *testing.T) {
	t.Parallel()

	now := time.Now()
	u := &User{}
	u.TouchSession("a", "", now)
	u.TouchSession("b", "", now)
	u.TouchSession("c", "", now)

	removed, ok := u.RemoveSession("b")
	assert.True(t, ok)
	assert.Equal(t, "b", removed.DeviceID)
	assert.Equal(t, []string{"a", "c"}, deviceIDs(u.Sessions))

	_, ok = u.RemoveSession("b")
	assert.False(t, ok, "removing an absent session is idempotent")
}

func TestUser_IsLocked(t *testing.T) {
	t.Parallel()

	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	assert.False(t, (&User{}).IsLocked(now))
	assert.True(t, (&User{LockedUntil: &future}).IsLocked(now))
	assert.False(t, (&User{LockedUntil: &past}).IsLocked(now))
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com "))
}

func deviceIDs(sessions []Session) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.DeviceID
	}
	return out
}
