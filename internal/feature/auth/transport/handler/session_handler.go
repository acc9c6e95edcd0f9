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

// SessionUsecase はデバイスセッション操作のユースケースを定義します。
type SessionUsecase interface {
	Sessions(ctx context.Context, userID string) ([]entity.Session, error)
	DeleteSession(ctx context.Context, caller usecase.Caller, deviceID string) (int, error)
	Logout(ctx context.Context, caller usecase.Caller) (int, error)
	LogoutAll(ctx context.Context, caller usecase.Caller) error
}

// SessionHandler はセッション一覧・削除とログアウトを処理します。
type SessionHandler struct {
	sessions SessionUsecase
}

// NewSessionHandler はSessionHandlerの新しいインスタンスを生成します。
func NewSessionHandler(sessions SessionUsecase) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// List は呼び出し元のアクティブセッションを返します。期限切れのセッションは除外されます。
func (h *SessionHandler) List(c *gin.Context) {
	live, err := h.sessions.Sessions(c.Request.Context(), jwtmw.UserID(c))
	if err != nil {
		respondError(c, "list sessions", err)
		return
	}
	current := currentDeviceID(c)
	c.JSON(http.StatusOK, dto.SessionsRes{
		Sessions:            toSessionRes(live, current),
		CurrentDeviceID:     current,
		TotalActiveSessions: len(live),
	})
}

// Delete は指定デバイスのセッションを削除します。
// 自分のデバイスを削除した場合は、このリクエストのトークンも失効します。
func (h *SessionHandler) Delete(c *gin.Context) {
	deviceID := c.Param("deviceId")
	caller := callerFrom(c)

	remaining, err := h.sessions.DeleteSession(c.Request.Context(), caller, deviceID)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrSessionNotFound):
		writeError(c, http.StatusNotFound, CodeSessionNotFound, "Session not found")
		return
	case errors.Is(err, usecase.ErrSessionExpired):
		writeError(c, http.StatusBadRequest, CodeSessionExpired, "Session has already expired")
		return
	default:
		respondError(c, "delete session", err)
		return
	}

	slog.Info("session deleted", "user_id", caller.UserID, "device_id", deviceID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.RemainingSessionsRes{
		Message:           "Session deleted successfully",
		RemainingSessions: remaining,
	})
}

// Logout は現在のデバイスからログアウトします。他のデバイスには影響しません。
func (h *SessionHandler) Logout(c *gin.Context) {
	remaining, err := h.sessions.Logout(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, "logout", err)
		return
	}
	c.JSON(http.StatusOK, dto.RemainingSessionsRes{
		Message:           "User logged out successfully",
		RemainingSessions: remaining,
	})
}

// LogoutAll はすべてのデバイスからログアウトし、リフレッシュトークンも無効にします。
func (h *SessionHandler) LogoutAll(c *gin.Context) {
	if err := h.sessions.LogoutAll(c.Request.Context(), callerFrom(c)); err != nil {
		respondError(c, "logout all", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "Logged out from all devices"})
}
