// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// readyTimeout は依存サービス1つあたりの確認時間の上限です。
const readyTimeout = 2 * time.Second

// Pinger は疎通確認できる依存サービス（DB、Redisなど）です。
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します（liveness）。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Ready は /readyz を処理します（readiness）。
// すべての依存サービスに到達できれば200、1つでも失敗すれば503を返します。
func Ready(deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		checks := make(gin.H, len(deps))
		status := http.StatusOK
		for name, p := range deps {
			ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
			err := p.Ping(ctx)
			cancel()
			if err != nil {
				slog.Warn("readiness check failed", "dependency", name, "error", err)
				checks[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		if status == http.StatusOK {
			c.JSON(status, gin.H{"status": "ready", "checks": checks})
			return
		}
		c.JSON(status, gin.H{"status": "not_ready", "checks": checks})
	}
}
