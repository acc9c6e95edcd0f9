package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "auth_backend/internal/feature/auth/adapters"
	authhandler "auth_backend/internal/feature/auth/transport/handler"
	"auth_backend/internal/feature/auth/usecase"
	"auth_backend/internal/platform/config"
	jwtmw "auth_backend/internal/platform/jwt"
	"auth_backend/internal/platform/mail"
	"auth_backend/internal/platform/password"
)

// AuthService is everything the HTTP layer and main need from the auth usecases.
type AuthService interface {
	authhandler.AuthUsecase
	authhandler.SessionUsecase
	authhandler.AccountUsecase
	authhandler.SessionConfirmer
	// Wait blocks until in-flight notification mails are done.
	Wait()
	// WaitContext is Wait bounded by ctx.
	WaitContext(ctx context.Context) error
}

// Auth bundles the wired auth feature.
type Auth struct {
	Service  AuthService
	Ledger   *usecase.RevocationLedger
	Codec    *jwtmw.Codec
	Handler  *authhandler.AuthHandler
	Sessions *authhandler.SessionHandler
	Accounts *authhandler.AccountHandler
}

// NewAuth wires the auth feature: repositories, token codec, revocation
// ledger, usecases and handlers.
func NewAuth(cfg config.Config, db *gorm.DB, rdb *redis.Client, metrics usecase.Metrics, logger *slog.Logger) (*Auth, error) {
	codec, err := jwtmw.NewCodec(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	renderer, err := mail.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load mail templates: %w", err)
	}

	ledger := usecase.NewRevocationLedger(NewRevocationStore(db, rdb), metrics)
	svc := usecase.NewAuthUsecase(cfg.Auth, usecase.Deps{
		Users:    authadapters.NewUserGorm(db),
		Ledger:   ledger,
		Codec:    codec,
		Hasher:   password.NewBcrypt(cfg.BcryptCost),
		Mailer:   NewMailer(cfg.SMTP, logger),
		Renderer: renderer,
		Metrics:  metrics,
		Logger:   logger,
	})

	return &Auth{
		Service:  svc,
		Ledger:   ledger,
		Codec:    codec,
		Handler:  authhandler.NewAuthHandler(svc),
		Sessions: authhandler.NewSessionHandler(svc),
		Accounts: authhandler.NewAccountHandler(svc),
	}, nil
}
