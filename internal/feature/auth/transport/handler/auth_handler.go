// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"auth_backend/internal/feature/auth/transport/http/dto"
	"auth_backend/internal/feature/auth/usecase"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は未確認のアカウントを作成し、確認メールを送信します。
	Register(ctx context.Context, email, password string) error
	// Login はパスワードを検証し、セッションポリシーに従ってデバイスを受け入れます。
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginResult, error)
	// Refresh はリフレッシュトークンをローテーションし、新しいアクセストークンを返します。
	Refresh(ctx context.Context, refreshToken string) (*usecase.TokenPair, error)
	AccessTokenTTL() time.Duration
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー、弱いパスワード、メール重複時は400を返却
// - 成功時は201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "register", err)
		return
	}
	err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		slog.Warn("register rejected", "error", err, "remote_addr", c.ClientIP())
		writeError(c, http.StatusBadRequest, CodeEmailExists, "Email already exists")
		return
	default:
		respondError(c, "register", err)
		return
	}
	c.JSON(http.StatusCreated, dto.MessageRes{Message: "User registered successfully. Please check your email to verify your account."})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - 認証失敗時は400（メール不明とパスワード違いは区別しない）
// - 未確認メールは400、ロック中とセッション上限は403
// - 成功時はトークンとアクティブセッション一覧付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "login", err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{
		Email:               req.Email,
		Password:            req.Password,
		DeviceID:            c.GetHeader(HeaderDeviceID),
		UserAgent:           c.Request.UserAgent(),
		ForceLogoutDeviceID: c.GetHeader(HeaderForceLogout),
	})
	if err != nil {
		h.loginFailed(c, err)
		return
	}

	slog.Info("user login successful",
		"user_id", res.UserID,
		"device_id", res.DeviceID,
		"refreshed", res.Refreshed,
		"remote_addr", c.ClientIP(),
	)
	c.Header(HeaderDeviceID, res.DeviceID)
	c.JSON(http.StatusOK, dto.LoginRes{
		Token:          res.AccessToken,
		RefreshToken:   res.RefreshToken,
		Role:           res.Role,
		ExpiresIn:      int64(h.auth.AccessTokenTTL() / time.Second),
		DeviceID:       res.DeviceID,
		ActiveSessions: toSessionRes(res.Sessions, res.DeviceID),
	})
}

func (h *AuthHandler) loginFailed(c *gin.Context, err error) {
	var (
		maxErr  *usecase.MaxSessionsError
		lockErr *usecase.AccountLockedError
	)
	// ユーザー列挙攻撃を防止するため、メールアドレスはログに残さない
	slog.Warn("login failed", "error", err, "remote_addr", c.ClientIP())

	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		writeError(c, http.StatusBadRequest, CodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, usecase.ErrEmailNotVerified):
		writeError(c, http.StatusBadRequest, CodeEmailNotVerified, "Email not verified. Check your inbox.")
	case errors.As(err, &lockErr):
		c.JSON(http.StatusForbidden, dto.AccountLockedRes{
			Message:     "Account locked due to too many failed login attempts",
			Code:        CodeAccountLocked,
			LockedUntil: lockErr.Until.UTC(),
		})
	case errors.As(err, &maxErr):
		c.JSON(http.StatusForbidden, dto.MaxSessionsRes{
			Message:        "Maximum number of active sessions reached. Log out from another device or pass its ID in the force-logout header.",
			Code:           CodeMaxSessions,
			ActiveSessions: toSessionRes(maxErr.Sessions, ""),
		})
	default:
		respondError(c, "login", err)
	}
}

// Refresh はリフレッシュトークンを新しいトークンペアに交換します。
// 無効または使用済みのリフレッシュトークンは400を返却します。
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "refresh", err)
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if errors.Is(err, usecase.ErrInvalidRefreshToken) {
		slog.Warn("refresh rejected", "remote_addr", c.ClientIP())
		writeError(c, http.StatusBadRequest, CodeInvalidRefreshToken, "Invalid refresh token")
		return
	}
	if err != nil {
		respondError(c, "refresh", err)
		return
	}
	c.JSON(http.StatusOK, dto.RefreshRes{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(h.auth.AccessTokenTTL() / time.Second),
	})
}
