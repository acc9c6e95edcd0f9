package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/transport/http/dto"
	"auth_backend/internal/feature/auth/usecase"
	jwtmw "auth_backend/internal/platform/jwt"
)

// AccountUsecase はメール確認とパスワード管理のユースケースを定義します。
type AccountUsecase interface {
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, caller usecase.Caller, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context, caller usecase.Caller) error
	Profile(ctx context.Context, userID string) (*entity.User, error)
}

// AccountHandler はアカウント管理のHTTPリクエストを処理します。
type AccountHandler struct {
	accounts AccountUsecase
}

// NewAccountHandler はAccountHandlerの新しいインスタンスを生成します。
func NewAccountHandler(accounts AccountUsecase) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// VerifyEmail は確認リンクのトークンを消費します。
func (h *AccountHandler) VerifyEmail(c *gin.Context) {
	err := h.accounts.VerifyEmail(c.Request.Context(), c.Param("token"))
	if errors.Is(err, usecase.ErrInvalidOrExpiredToken) {
		writeError(c, http.StatusBadRequest, CodeInvalidOrExpiredToken, "Invalid or expired token")
		return
	}
	if err != nil {
		respondError(c, "verify email", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "Email verified successfully"})
}

// ResendVerification は確認メールを再送します。
// アカウントの有無を推測されないよう、常に同じレスポンスを返します。
func (h *AccountHandler) ResendVerification(c *gin.Context) {
	var req dto.EmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "resend verification", err)
		return
	}
	if err := h.accounts.ResendVerification(c.Request.Context(), req.Email); err != nil {
		respondError(c, "resend verification", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "If the account exists and is not verified, a verification email has been sent"})
}

// ForgotPassword はパスワードリセットメールを送信します。
// アカウントの有無を推測されないよう、常に同じレスポンスを返します。
func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	var req dto.EmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "forgot password", err)
		return
	}
	if err := h.accounts.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, "forgot password", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "If the account exists, a password reset email has been sent"})
}

// ResetPassword はリセットトークンを消費して新しいパスワードを設定します。
func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "reset password", err)
		return
	}
	err := h.accounts.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if errors.Is(err, usecase.ErrInvalidOrExpiredToken) {
		writeError(c, http.StatusBadRequest, CodeInvalidOrExpiredToken, "Invalid or expired token")
		return
	}
	if err != nil {
		respondError(c, "reset password", err)
		return
	}
	slog.Info("password reset", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.MessageRes{Message: "Password reset successful"})
}

// ChangePassword は現在のパスワードを確認してから変更します。
// 現在のデバイス以外のセッションはすべて終了します。
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "change password", err)
		return
	}
	err := h.accounts.ChangePassword(c.Request.Context(), callerFrom(c), req.CurrentPassword, req.NewPassword)
	if errors.Is(err, usecase.ErrInvalidCredentials) {
		writeError(c, http.StatusBadRequest, CodeInvalidCredentials, "Current password is incorrect")
		return
	}
	if err != nil {
		respondError(c, "change password", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "Password changed successfully"})
}

// DeleteAccount は呼び出し元のアカウントを削除します。
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	if err := h.accounts.DeleteAccount(c.Request.Context(), callerFrom(c)); err != nil {
		respondError(c, "delete account", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "Account deleted successfully"})
}

// Profile はハッシュやトークンを含まない安全なユーザー情報を返します。
func (h *AccountHandler) Profile(c *gin.Context) {
	user, err := h.accounts.Profile(c.Request.Context(), jwtmw.UserID(c))
	if err != nil {
		respondError(c, "profile", err)
		return
	}
	c.JSON(http.StatusOK, dto.ProfileRes{
		ID:             user.ID,
		Email:          user.Email,
		Role:           user.Role,
		IsVerified:     user.IsVerified,
		ActiveSessions: len(user.Sessions),
		CreatedAt:      user.CreatedAt,
	})
}
