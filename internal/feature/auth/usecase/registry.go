package usecase

import (
	"context"
	"errors"
	"time"

	"auth_backend/internal/feature/auth/domain/entity"
)

// SessionRegistry manages the per-user collection of device sessions.
//
// Every mutation is an atomic read-modify-write of the owning user record
// through UserRepository.Update, so concurrent requests from different
// devices of the same user never lose each other's writes.
type SessionRegistry struct {
	users   UserRepository
	ttl     time.Duration
	metrics Metrics
	now     func() time.Time
}

// NewSessionRegistry creates a registry whose sessions die after ttl of inactivity.
func NewSessionRegistry(users UserRepository, ttl time.Duration, metrics Metrics) *SessionRegistry {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &SessionRegistry{users: users, ttl: ttl, metrics: metrics, now: time.Now}
}

// ListLive returns the user's live sessions in order. Expired sessions are
// pruned from the record as a side effect; the record is only written when
// something was actually pruned.
func (r *SessionRegistry) ListLive(ctx context.Context, userID string) ([]entity.Session, error) {
	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := r.now()
	if len(user.LiveSessions(now, r.ttl)) == len(user.Sessions) {
		return user.Sessions, nil
	}

	var pruned int
	updated, err := r.users.Update(ctx, userID, func(u *entity.User) error {
		pruned = len(u.PruneSessions(r.now(), r.ttl))
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.metrics.SessionsPruned(pruned)
	return updated.Sessions, nil
}

// Confirm succeeds only if deviceID has a live session, refreshing its
// recency in the same write. Expired sessions are pruned on the way.
func (r *SessionRegistry) Confirm(ctx context.Context, userID, deviceID, userAgent string) error {
	var pruned int
	_, err := r.users.Update(ctx, userID, func(u *entity.User) error {
		now := r.now()
		pruned = len(u.PruneSessions(now, r.ttl))
		if u.FindSession(deviceID) < 0 {
			return ErrSessionNotFound
		}
		u.TouchSession(deviceID, userAgent, now)
		return nil
	})
	if err != nil {
		return err
	}
	r.metrics.SessionsPruned(pruned)
	return nil
}

// Evict removes the session for deviceID. Evicting an absent session is not
// an error; removed reports whether a session was there.
func (r *SessionRegistry) Evict(ctx context.Context, userID, deviceID string) (bool, error) {
	var removed bool
	_, err := r.users.Update(ctx, userID, func(u *entity.User) error {
		_, removed = u.RemoveSession(deviceID)
		if !removed {
			return errNothingToWrite
		}
		return nil
	})
	if errors.Is(err, errNothingToWrite) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return removed, nil
}

// EvictAll clears every session of the user.
func (r *SessionRegistry) EvictAll(ctx context.Context, userID string) error {
	_, err := r.users.Update(ctx, userID, func(u *entity.User) error {
		u.Sessions = nil
		return nil
	})
	return err
}

// Remove evicts a session on explicit user request and, unlike Evict,
// reports why nothing was removed: ErrSessionNotFound when the device has no
// session and ErrSessionExpired when it had one that was no longer live (the
// stale entry is pruned). It returns the number of sessions left.
func (r *SessionRegistry) Remove(ctx context.Context, userID, deviceID string) (int, error) {
	var outcome error
	updated, err := r.users.Update(ctx, userID, func(u *entity.User) error {
		outcome = nil
		now := r.now()
		i := u.FindSession(deviceID)
		if i < 0 {
			return ErrSessionNotFound
		}
		if !u.Sessions[i].IsLive(now, r.ttl) {
			outcome = ErrSessionExpired
		}
		u.RemoveSession(deviceID)
		u.PruneSessions(now, r.ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if outcome != nil {
		return len(updated.Sessions), outcome
	}
	return len(updated.Sessions), nil
}

// errNothingToWrite aborts an Update whose closure made no change.
var errNothingToWrite = errors.New("nothing to write")
