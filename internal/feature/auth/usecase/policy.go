package usecase

import (
	"time"

	"auth_backend/internal/feature/auth/domain/entity"
)

// SessionPolicy decides login admission against the concurrent-session cap.
//
// Admit walks PRUNE -> FORCE_EVICT (optional) -> CAPACITY_CHECK -> ADMIT|REJECT
// on an in-memory user record. It is pure: the caller applies it inside a
// UserRepository.Update closure so the decision and the write are atomic.
type SessionPolicy struct {
	MaxSessions int
	TTL         time.Duration
}

// AdmitRequest describes one login attempt of an authenticated user.
type AdmitRequest struct {
	DeviceID  string
	UserAgent string
	// ForceLogoutDeviceID names one of the user's own devices to evict when
	// the cap is reached. It is ignored below the cap.
	ForceLogoutDeviceID string
}

// Decision is the outcome of an admitted login.
type Decision struct {
	// Refreshed is true when DeviceID already had a live session.
	Refreshed bool
	// Evicted is the session removed by a force-logout, if any.
	Evicted *entity.Session
	// Pruned are the expired sessions dropped in the PRUNE step.
	Pruned []entity.Session
	// Sessions is the session snapshot after admission.
	Sessions []entity.Session
}

// Admit applies the admission state machine to u at now. On rejection it
// returns a *MaxSessionsError carrying the live sessions and leaves the
// session list pruned but otherwise untouched.
func (p SessionPolicy) Admit(u *entity.User, req AdmitRequest, now time.Time) (Decision, error) {
	var d Decision

	// PRUNE
	d.Pruned = u.PruneSessions(now, p.TTL)

	// An already registered device is re-authenticating: never counts against the cap.
	if u.FindSession(req.DeviceID) >= 0 {
		d.Refreshed = true
		u.TouchSession(req.DeviceID, req.UserAgent, now)
		d.Sessions = snapshot(u.Sessions)
		return d, nil
	}

	// FORCE_EVICT
	if req.ForceLogoutDeviceID != "" && len(u.Sessions) >= p.MaxSessions {
		if evicted, ok := u.RemoveSession(req.ForceLogoutDeviceID); ok {
			d.Evicted = &evicted
		}
	}

	// CAPACITY_CHECK
	if len(u.Sessions) >= p.MaxSessions {
		return Decision{}, &MaxSessionsError{Limit: p.MaxSessions, Sessions: snapshot(u.Sessions)}
	}

	// ADMIT
	u.TouchSession(req.DeviceID, req.UserAgent, now)
	d.Sessions = snapshot(u.Sessions)
	return d, nil
}

func snapshot(sessions []entity.Session) []entity.Session {
	out := make([]entity.Session, len(sessions))
	copy(out, sessions)
	return out
}
