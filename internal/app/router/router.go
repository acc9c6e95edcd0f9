// Package router assembles the gin engine.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"auth_backend/internal/feature/auth/domain/entity"
	authhandler "auth_backend/internal/feature/auth/transport/handler"
	"auth_backend/internal/platform/http/handler"
	jwtmw "auth_backend/internal/platform/jwt"
	"auth_backend/internal/platform/observability"
	"auth_backend/internal/shared/ratelimiter"
)

// Deps are the components the router mounts.
type Deps struct {
	Auth     *authhandler.AuthHandler
	Sessions *authhandler.SessionHandler
	Accounts *authhandler.AccountHandler

	Verifier    jwtmw.TokenVerifier
	Revocations jwtmw.RevocationChecker
	Confirmer   authhandler.SessionConfirmer
	Users       authhandler.UserLookup

	// LoginLimiter は /login と /register に適用します。nil なら制限しません。
	LoginLimiter *ratelimiter.RateLimiter
	Metrics      http.Handler
	Ready        map[string]handler.Pinger
	CORSOrigins  []string
	Logger       *slog.Logger
}

// NewRouter mounts the auth API under /api/auth plus the platform endpoints.
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(observability.Recover(logger), observability.RequestLogger(logger))
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type", authhandler.HeaderDeviceID, authhandler.HeaderForceLogout},
			ExposeHeaders:    []string{authhandler.HeaderDeviceID, "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(d.Ready))
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	limit := func(c *gin.Context) { c.Next() }
	if d.LoginLimiter != nil {
		limit = d.LoginLimiter.Middleware()
	}

	api := r.Group("/api/auth")

	// 認証不要
	api.POST("/register", limit, d.Auth.Register)
	api.POST("/login", limit, d.Auth.Login)
	api.POST("/refresh-token", d.Auth.Refresh)
	api.POST("/forgot-password", limit, d.Accounts.ForgotPassword)
	api.PUT("/reset-password/:token", d.Accounts.ResetPassword)
	api.GET("/verify-email/:token", d.Accounts.VerifyEmail)
	api.POST("/resend-verification-email", limit, d.Accounts.ResendVerification)

	// トークンのみ必須（デバイスのセッションが既に消えていても呼べる）
	authed := api.Group("/")
	authed.Use(jwtmw.AuthRequired(d.Verifier, d.Revocations))
	{
		authed.DELETE("/sessions/:deviceId", d.Sessions.Delete)
		authed.POST("/logout-all", d.Sessions.LogoutAll)
	}

	// トークンと有効なデバイスセッションが必須
	session := authed.Group("/")
	session.Use(authhandler.SessionRequired(d.Confirmer))
	{
		session.GET("/sessions", d.Sessions.List)
		session.POST("/logout", d.Sessions.Logout)
		session.GET("/profile", d.Accounts.Profile)
		session.PUT("/change-password", d.Accounts.ChangePassword)
		session.DELETE("/delete-account", d.Accounts.DeleteAccount)
		session.GET("/user", authhandler.RequireRole(d.Users, entity.RoleUser), authhandler.Welcome(entity.RoleUser))
		session.GET("/admin", authhandler.RequireRole(d.Users, entity.RoleAdmin), authhandler.Welcome(entity.RoleAdmin))
	}

	return r
}
