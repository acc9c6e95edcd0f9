// Package ratelimiter はキー（クライアントIPなど）ごとのスライディングウィンドウ制限を提供します。
package ratelimiter

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// defaultMaxKeys を超えたら期限切れのキーを掃除します。
const defaultMaxKeys = 5000

// RateLimiter は、キーごとに window 内のリクエスト数を limit までに制限します。
type RateLimiter struct {
	mu      sync.Mutex
	limit   int           // window あたりの上限
	window  time.Duration // スライディングウィンドウの幅
	hits    map[string][]time.Time
	maxKeys int
	now     func() time.Time
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// limit と window が0以下の場合はそれぞれ 10回 / 1分 を使います。
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limit:   limit,
		window:  window,
		hits:    make(map[string][]time.Time),
		maxKeys: defaultMaxKeys,
		now:     time.Now,
	}
}

// Allow はキーのリクエストを1回記録し、許可されたかを返します。
// 拒否された場合は再試行までの待ち時間（最低1秒）も返します。
// 拒否されたリクエストはカウントしません。
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()
	threshold := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	hits := rl.hits[key]
	kept := make([]time.Time, 0, len(hits)+1)
	for _, hit := range hits {
		if hit.After(threshold) {
			kept = append(kept, hit)
		}
	}

	if len(kept) >= rl.limit {
		retryAfter := kept[0].Add(rl.window).Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		rl.hits[key] = kept
		return false, retryAfter
	}

	rl.hits[key] = append(kept, now)
	if len(rl.hits) > rl.maxKeys {
		rl.evictIdle(threshold)
	}
	return true, 0
}

// evictIdle drops keys with no hit inside the window. Caller holds mu.
func (rl *RateLimiter) evictIdle(threshold time.Time) {
	for key, hits := range rl.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(threshold) {
			delete(rl.hits, key)
		}
	}
}

// Middleware はクライアントIPごとに制限し、超過時は429とRetry-Afterを返します。
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := rl.Allow(c.ClientIP())
		if !ok {
			slog.Warn("rate limit exceeded",
				"path", c.FullPath(),
				"remote_addr", c.ClientIP(),
			)
			c.Header("Retry-After", strconv.Itoa(int(retryAfter/time.Second)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "too many requests, please try again later",
				"code":    "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
