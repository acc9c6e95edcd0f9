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

// SessionConfirmer checks that a device still holds a live session.
type SessionConfirmer interface {
	ConfirmSession(ctx context.Context, userID, deviceID, userAgent string) error
}

// UserLookup loads the authenticated user for role checks.
type UserLookup interface {
	Profile(ctx context.Context, userID string) (*entity.User, error)
}

// SessionRequired はAuthRequiredの後に置き、device-idヘッダーのデバイスが
// 有効なセッションを持つことを確認します。確認と同時に最終アクティブ時刻を更新します。
func SessionRequired(sessions SessionConfirmer) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := c.GetHeader(HeaderDeviceID)
		if deviceID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorRes{
				Message: "Device ID required",
				Code:    CodeDeviceIDRequired,
			})
			return
		}

		err := sessions.ConfirmSession(c.Request.Context(), jwtmw.UserID(c), deviceID, c.Request.UserAgent())
		switch {
		case err == nil:
		case errors.Is(err, usecase.ErrSessionNotFound), errors.Is(err, usecase.ErrUserNotFound):
			slog.Warn("session rejected", "device_id", deviceID, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorRes{
				Message: "No active session found for this device",
				Code:    CodeInvalidSession,
			})
			return
		default:
			slog.Error("session check failed", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorRes{Message: "internal server error"})
			return
		}

		c.Set(ContextDeviceID, deviceID)
		c.Next()
	}
}

// RequireRole は認証済みユーザーのロールが roles のいずれかであることを要求します。
func RequireRole(users UserLookup, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.Profile(c.Request.Context(), jwtmw.UserID(c))
		if err != nil && !errors.Is(err, usecase.ErrUserNotFound) {
			slog.Error("role check failed", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorRes{Message: "internal server error"})
			return
		}
		if err != nil || !user.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorRes{
				Message: "Access denied",
				Code:    CodeForbidden,
			})
			return
		}
		c.Next()
	}
}

// Welcome はロール確認用のエンドポイントです。
func Welcome(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.MessageRes{Message: "Welcome, " + role + "!"})
	}
}
