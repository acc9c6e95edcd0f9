package cache

import (
	"strings"
	"time"
)

// minTTL is the shortest expiry set on a cache key. Redis rejects a zero TTL
// and a negative one would delete the key immediately.
const minTTL = time.Second

// TTLUntil は now から expiresAt までの期間を返します。
// 既に過ぎている場合や 1 秒未満の場合は minTTL を返します。
func TTLUntil(expiresAt, now time.Time) time.Duration {
	d := expiresAt.Sub(now)
	if d < minTTL {
		return minTTL
	}
	return d
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
