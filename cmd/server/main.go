package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"auth_backend/internal/app/di"
	"auth_backend/internal/app/router"
	authadapters "auth_backend/internal/feature/auth/adapters"
	"auth_backend/internal/platform/config"
	"auth_backend/internal/platform/db"
	"auth_backend/internal/platform/http/handler"
	"auth_backend/internal/platform/logger"
	"auth_backend/internal/platform/observability"
	infraredis "auth_backend/internal/platform/redis"
	"auth_backend/internal/shared/ratelimiter"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		observability.FlushSentry()
		os.Exit(1)
	}
}

func run() error {
	// .env はローカル開発用。本番では環境変数を直接設定する
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	base := logger.New(cfg.LogLevel, cfg.LogFmt)
	log := slog.New(observability.NewSentryHandler(base.Handler()))
	slog.SetDefault(log)

	if err := di.InitSentry(cfg); err != nil {
		log.Warn("sentry disabled", "error", err)
	}
	defer observability.FlushSentry()

	// db
	gdb, err := db.Open(cfg.DB, authadapters.Models()...)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ready := map[string]handler.Pinger{"database": handler.PingerFunc(sqlDB.PingContext)}

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			log.Warn("Redis unavailable. Running without revocation cache.", "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Error("failed to close Redis client", "error", err)
				}
			}()
			ready["redis"] = handler.PingerFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		}
	}

	metrics := observability.NewMetrics()
	auth, err := di.NewAuth(cfg, gdb, rdb, metrics, log)
	if err != nil {
		return err
	}

	go auth.Ledger.RunSweeper(ctx, cfg.RevocationSweepPeriod, log)

	engine := router.NewRouter(router.Deps{
		Auth:         auth.Handler,
		Sessions:     auth.Sessions,
		Accounts:     auth.Accounts,
		Verifier:     auth.Codec,
		Revocations:  auth.Ledger,
		Confirmer:    auth.Service,
		Users:        auth.Service,
		LoginLimiter: ratelimiter.NewRateLimiter(cfg.LoginRateLimitMax, cfg.LoginRateLimitWindow),
		Metrics:      metrics.Handler(),
		Ready:        ready,
		CORSOrigins:  cfg.CORSAllowedOrigins,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// 送信中の通知メールを待つ
	if err := auth.Service.WaitContext(shutdownCtx); err != nil {
		log.Warn("abandoning notification mails", "error", err)
	}
	return nil
}
