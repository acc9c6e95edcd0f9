package usecase

import (
	"context"

	"auth_backend/internal/feature/auth/domain/entity"
)

// Sessions lists the caller's live sessions, pruning expired ones.
func (u *authUsecase) Sessions(ctx context.Context, userID string) ([]entity.Session, error) {
	return u.registry.ListLive(ctx, userID)
}

// ConfirmSession checks that the device of an authenticated request still
// has a live session and refreshes its recency.
func (u *authUsecase) ConfirmSession(ctx context.Context, userID, deviceID, userAgent string) error {
	if deviceID == "" {
		return ErrSessionNotFound
	}
	return u.registry.Confirm(ctx, userID, deviceID, userAgent)
}

// DeleteSession signs one of the caller's devices out. Deleting the caller's
// own device also revokes the bearer token of the request.
func (u *authUsecase) DeleteSession(ctx context.Context, caller Caller, deviceID string) (int, error) {
	remaining, err := u.registry.Remove(ctx, caller.UserID, deviceID)
	if err != nil {
		return remaining, err
	}

	if deviceID == caller.DeviceID {
		if err := u.ledger.Revoke(ctx, caller.Token, caller.TokenExpiresAt); err != nil {
			return 0, err
		}
	}
	u.logger.Info("session deleted", "user_id", caller.UserID, "device_id", deviceID)
	return remaining, nil
}

// Logout revokes the request's bearer token and ends the caller's device
// session. Other devices, and the user's rotation token, are unaffected.
func (u *authUsecase) Logout(ctx context.Context, caller Caller) (int, error) {
	if err := u.ledger.Revoke(ctx, caller.Token, caller.TokenExpiresAt); err != nil {
		return 0, err
	}
	if _, err := u.registry.Evict(ctx, caller.UserID, caller.DeviceID); err != nil {
		return 0, err
	}
	live, err := u.registry.ListLive(ctx, caller.UserID)
	if err != nil {
		return 0, err
	}
	u.logger.Info("user logged out", "user_id", caller.UserID, "device_id", caller.DeviceID)
	return len(live), nil
}

// LogoutAll revokes the request's bearer token, clears every session and
// empties the rotation slot so no device can refresh any more.
func (u *authUsecase) LogoutAll(ctx context.Context, caller Caller) error {
	if err := u.ledger.Revoke(ctx, caller.Token, caller.TokenExpiresAt); err != nil {
		return err
	}
	if err := u.registry.EvictAll(ctx, caller.UserID); err != nil {
		return err
	}
	if _, err := u.users.Update(ctx, caller.UserID, func(rec *entity.User) error {
		rec.RefreshTokenHash = nil
		return nil
	}); err != nil {
		return err
	}
	u.logger.Info("user logged out from all devices", "user_id", caller.UserID)
	return nil
}
