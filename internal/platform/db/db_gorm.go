// Package db opens the GORM connection used by the repositories.
package db

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlitePrefix marks a DATABASE_URL that points at a local SQLite file.
const sqlitePrefix = "sqlite://"

// retryInterval は接続リトライの間隔です。
const retryInterval = 2 * time.Second

// Config はデータベース接続設定です。
// URL が設定されている場合は個別の項目より優先されます。
type Config struct {
	URL      string
	User     string
	Password string
	Name     string
	Host     string
	Port     string
	SSLMode  string

	ConnectTimeout time.Duration
	RunMigrations  bool
}

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	timeout := 60 * time.Second
	if v := os.Getenv("DB_CONNECT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			timeout = d
		}
	}
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}
	return Config{
		URL:            os.Getenv("DATABASE_URL"),
		User:           os.Getenv("DB_USER"),
		Password:       os.Getenv("DB_PASSWORD"),
		Name:           os.Getenv("DB_NAME"),
		Host:           os.Getenv("DB_HOST"),
		Port:           os.Getenv("DB_PORT"),
		SSLMode:        sslmode,
		ConnectTimeout: timeout,
		RunMigrations:  os.Getenv("RUN_MIGRATIONS") == "true",
	}
}

// BuildDSN は設定から接続文字列を生成します。
func BuildDSN(cfg Config) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)
}

// Dialector は DSN に応じて PostgreSQL か SQLite のダイアレクタを返します。
func Dialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, sqlitePrefix) {
		return sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix))
	}
	return postgres.Open(dsn)
}

// OpenGorm opens dsn with the settings the repositories rely on.
// TranslateError maps unique violations to gorm.ErrDuplicatedKey.
func OpenGorm(dsn string) (*gorm.DB, error) {
	return gorm.Open(Dialector(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
}

// ConnectWithRetry は timeout に達するまで opener での接続を繰り返します。
// コンテナ起動直後など、DB がまだ受け付けていない場合に備えます。
func ConnectWithRetry(dsn string, timeout time.Duration, opener func(dsn string) (*gorm.DB, error)) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err)
		time.Sleep(retryInterval)
	}
}

// ValidateDSN は PostgreSQL の DSN を接続せずに解析します。
// 書式の誤りはリトライしても直らないため、接続前に検出します。
func ValidateDSN(dsn string) error {
	if strings.HasPrefix(dsn, sqlitePrefix) {
		return nil
	}
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return fmt.Errorf("invalid database DSN: %w", err)
	}
	return nil
}

// Open は設定に従って接続し、必要ならマイグレーションを実行します。
func Open(cfg Config, models ...any) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)
	if err := ValidateDSN(dsn); err != nil {
		return nil, err
	}
	db, err := ConnectWithRetry(dsn, cfg.ConnectTimeout, OpenGorm)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(cfg.URL, sqlitePrefix) {
		// SQLite は書き込みを直列化します。
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if cfg.RunMigrations && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
		slog.Info("database migrated", "models", len(models))
	}
	return db, nil
}
