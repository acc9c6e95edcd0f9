package usecase

import (
	"context"
	"errors"
	"fmt"

	"auth_backend/internal/feature/auth/domain/entity"
)

// VerifyEmail consumes an email verification token.
func (u *authUsecase) VerifyEmail(ctx context.Context, token string) error {
	user, err := u.credentials.VerifyEmail(ctx, token)
	if err != nil {
		return err
	}
	u.logger.Info("email verified", "user_id", user.ID)
	return nil
}

// ResendVerification issues a new verification token for an unverified
// account. Unknown and already verified addresses succeed silently.
func (u *authUsecase) ResendVerification(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, entity.NormalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.IsVerified {
		return nil
	}

	var token string
	_, err = u.users.Update(ctx, user.ID, func(rec *entity.User) error {
		if rec.IsVerified {
			return errNothingToWrite
		}
		t, err := u.credentials.IssueVerificationToken(rec)
		token = t
		return err
	})
	if errors.Is(err, errNothingToWrite) {
		return nil
	}
	if err != nil {
		return err
	}

	u.notify(ctx, user.Email, "Email Verification", "verify_email", map[string]any{
		"Link": u.cfg.PublicBaseURL + "/api/auth/verify-email/" + token,
	})
	return nil
}

// ForgotPassword issues a password reset token and emails it. Unknown
// addresses succeed silently so accounts cannot be enumerated.
func (u *authUsecase) ForgotPassword(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, entity.NormalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		u.logger.Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	var token string
	_, err = u.users.Update(ctx, user.ID, func(rec *entity.User) error {
		t, err := u.credentials.IssueResetToken(rec)
		token = t
		return err
	})
	if err != nil {
		return err
	}

	u.notify(ctx, user.Email, "Password reset request", "reset_password", map[string]any{
		"Link":    u.cfg.PublicBaseURL + "/api/auth/reset-password/" + token,
		"Minutes": int(u.cfg.ResetTokenTTL.Minutes()),
	})
	u.logger.Info("password reset email queued", "user_id", user.ID)
	return nil
}

// ResetPassword redeems a reset token and sets a new password. Every device
// is signed out and the rotation slot is emptied in the same write.
func (u *authUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := u.validatePassword(newPassword); err != nil {
		return err
	}
	hashed, err := u.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := u.credentials.ConsumeResetToken(ctx, token, func(rec *entity.User) error {
		rec.PasswordHash = hashed
		rec.Sessions = nil
		rec.RefreshTokenHash = nil
		u.lockout.Reset(rec)
		return nil
	})
	if err != nil {
		return err
	}

	u.notify(ctx, user.Email, "Your password was changed", "password_changed", nil)
	u.logger.Info("password reset", "user_id", user.ID)
	return nil
}

// ChangePassword replaces the password of an authenticated caller after
// checking the current one. Other devices are signed out and the rotation
// slot is emptied; the caller's own session survives.
func (u *authUsecase) ChangePassword(ctx context.Context, caller Caller, currentPassword, newPassword string) error {
	user, err := u.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if err := u.hasher.Compare(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}
	if err := u.validatePassword(newPassword); err != nil {
		return err
	}
	hashed, err := u.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = u.users.Update(ctx, caller.UserID, func(rec *entity.User) error {
		rec.PasswordHash = hashed
		rec.RefreshTokenHash = nil
		kept := rec.Sessions[:0:0]
		for _, s := range rec.Sessions {
			if s.DeviceID == caller.DeviceID {
				kept = append(kept, s)
			}
		}
		rec.Sessions = kept
		return nil
	})
	if err != nil {
		return err
	}

	u.notify(ctx, user.Email, "Your password was changed", "password_changed", nil)
	u.logger.Info("password changed", "user_id", caller.UserID)
	return nil
}

// DeleteAccount removes the caller's account and revokes the request's token.
func (u *authUsecase) DeleteAccount(ctx context.Context, caller Caller) error {
	if err := u.ledger.Revoke(ctx, caller.Token, caller.TokenExpiresAt); err != nil {
		return err
	}
	if err := u.users.Delete(ctx, caller.UserID); err != nil {
		return err
	}
	u.logger.Info("account deleted", "user_id", caller.UserID)
	return nil
}

// Profile returns the caller's user record.
func (u *authUsecase) Profile(ctx context.Context, userID string) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}
