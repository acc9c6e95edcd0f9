package entity

import "time"

// Session is a live association between a user and one device.
type Session struct {
	DeviceID     string    `json:"deviceId"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	UserAgent    string    `json:"userAgent"`
}

// IsLive reports whether the session was active within ttl of now.
func (s Session) IsLive(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActiveAt) < ttl
}

// FindSession returns the index of the session for deviceID, or -1.
func (u *User) FindSession(deviceID string) int {
	for i, s := range u.Sessions {
		if s.DeviceID == deviceID {
			return i
		}
	}
	return -1
}

// LiveSessions returns a copy of the sessions that are live at now.
func (u *User) LiveSessions(now time.Time, ttl time.Duration) []Session {
	live := make([]Session, 0, len(u.Sessions))
	for _, s := range u.Sessions {
		if s.IsLive(now, ttl) {
			live = append(live, s)
		}
	}
	return live
}

// PruneSessions drops sessions that are no longer live and returns the dropped ones.
// Order of the remaining sessions is preserved.
func (u *User) PruneSessions(now time.Time, ttl time.Duration) []Session {
	var pruned []Session
	kept := u.Sessions[:0:0]
	for _, s := range u.Sessions {
		if s.IsLive(now, ttl) {
			kept = append(kept, s)
			continue
		}
		pruned = append(pruned, s)
	}
	u.Sessions = kept
	return pruned
}

// TouchSession refreshes the session for deviceID, inserting it at the end
// when the device has none. It never enforces a session cap.
func (u *User) TouchSession(deviceID, userAgent string, now time.Time) {
	if i := u.FindSession(deviceID); i >= 0 {
		u.Sessions[i].LastActiveAt = now
		if userAgent != "" {
			u.Sessions[i].UserAgent = userAgent
		}
		return
	}
	u.Sessions = append(u.Sessions, Session{
		DeviceID:     deviceID,
		LastActiveAt: now,
		UserAgent:    userAgent,
	})
}

// RemoveSession deletes the session for deviceID. Removing an absent
// session is not an error; the return value reports whether one was removed.
func (u *User) RemoveSession(deviceID string) (Session, bool) {
	i := u.FindSession(deviceID)
	if i < 0 {
		return Session{}, false
	}
	removed := u.Sessions[i]
	u.Sessions = append(u.Sessions[:i:i], u.Sessions[i+1:]...)
	return removed, true
}
