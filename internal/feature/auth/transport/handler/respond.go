package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/transport/http/dto"
	"auth_backend/internal/feature/auth/usecase"
	jwtmw "auth_backend/internal/platform/jwt"
)

// Machine-readable error codes returned in ErrorRes.Code.
const (
	CodeValidation            = "VALIDATION_ERROR"
	CodeEmailExists           = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeEmailNotVerified      = "EMAIL_NOT_VERIFIED"
	CodeAccountLocked         = "ACCOUNT_LOCKED"
	CodeMaxSessions           = "MAX_SESSIONS"
	CodeSessionNotFound       = "SESSION_NOT_FOUND"
	CodeSessionExpired        = "SESSION_EXPIRED"
	CodeInvalidSession        = "INVALID_SESSION"
	CodeDeviceIDRequired      = "DEVICE_ID_REQUIRED"
	CodeInvalidRefreshToken   = "INVALID_REFRESH_TOKEN"
	CodeInvalidOrExpiredToken = "INVALID_OR_EXPIRED_TOKEN"
	CodeUserNotFound          = "USER_NOT_FOUND"
	CodeForbidden             = "FORBIDDEN"
	CodeConflict              = "CONCURRENT_UPDATE"
)

// HeaderDeviceID はクライアントのデバイスIDを運ぶヘッダーです。
const HeaderDeviceID = "device-id"

// HeaderForceLogout はログイン時に追い出すデバイスIDを運ぶヘッダーです。
const HeaderForceLogout = "force-logout"

// ContextDeviceID はSessionRequiredが確認したデバイスIDのコンテキストキーです。
const ContextDeviceID = "deviceID"

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.ErrorRes{Message: message, Code: code})
}

// bindFailed はバインドエラーを400で返します。
func bindFailed(c *gin.Context, op string, err error) {
	slog.Warn(op+" validation failed", "error", err, "remote_addr", c.ClientIP())
	writeError(c, http.StatusBadRequest, CodeValidation, "invalid request")
}

// respondError は複数のエンドポイントで共通のエラーをステータスコードに変換します。
// 想定外のエラーは内容を公開せず500を返します。
func respondError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, usecase.ErrWeakPassword):
		writeError(c, http.StatusBadRequest, CodeValidation, err.Error())
	case errors.Is(err, usecase.ErrUserNotFound):
		writeError(c, http.StatusNotFound, CodeUserNotFound, "user not found")
	case errors.Is(err, usecase.ErrConcurrentUpdate):
		slog.Warn(op+" conflicted", "error", err, "remote_addr", c.ClientIP())
		writeError(c, http.StatusConflict, CodeConflict, "the account was modified concurrently, please retry")
	default:
		slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
		writeError(c, http.StatusInternalServerError, "", "internal server error")
	}
}

// currentDeviceID は確認済みのデバイスID、なければヘッダーの値を返します。
func currentDeviceID(c *gin.Context) string {
	if id := c.GetString(ContextDeviceID); id != "" {
		return id
	}
	return c.GetHeader(HeaderDeviceID)
}

// callerFrom builds the usecase caller from the authenticated request.
func callerFrom(c *gin.Context) usecase.Caller {
	token, exp := jwtmw.Token(c)
	return usecase.Caller{
		UserID:         jwtmw.UserID(c),
		DeviceID:       currentDeviceID(c),
		Token:          token,
		TokenExpiresAt: exp,
	}
}

func toSessionRes(sessions []entity.Session, currentDeviceID string) []dto.SessionRes {
	out := make([]dto.SessionRes, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, dto.SessionRes{
			DeviceID:        s.DeviceID,
			UserAgent:       s.UserAgent,
			LastActive:      s.LastActiveAt,
			IsCurrentDevice: currentDeviceID != "" && s.DeviceID == currentDeviceID,
		})
	}
	return out
}
