package dto

import "time"

// EmailReq は /forgot-password と /resend-verification-email のリクエストボディです。
type EmailReq struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordReq は PUT /reset-password/:token のリクエストボディです。
type ResetPasswordReq struct {
	Password string `json:"password" binding:"required"`
}

// ChangePasswordReq は PUT /change-password のリクエストボディです。
type ChangePasswordReq struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// ProfileRes is the safe view of a user. Hashes and tokens are never included.
type ProfileRes struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	IsVerified     bool      `json:"isVerified"`
	ActiveSessions int       `json:"activeSessions"`
	CreatedAt      time.Time `json:"createdAt"`
}
