// ABOUTME: Per-client rate limiting for the login endpoint
// ABOUTME: Token bucket keyed by client IP with TTL-based eviction

package api

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tamelab/tame/internal/config"
)

type clientBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*clientBucket
	limit   rate.Limit
	burst   int
	ttl     time.Duration
}

func newRateLimiter(cfg config.RateLimitConfig) *rateLimiter {
	ttl := cfg.ClientTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	burst := cfg.LoginBurst
	if burst <= 0 {
		burst = 1
	}
	return &rateLimiter{
		buckets: make(map[string]*clientBucket),
		limit:   rate.Limit(float64(cfg.LoginPerMinute) / 60.0),
		burst:   burst,
		ttl:     ttl,
	}
}

// allow reports whether the client may proceed, evicting idle buckets as it
// goes so the map stays bounded without a background goroutine.
func (rl *rateLimiter) allow(clientKey string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for k, b := range rl.buckets {
		if now.Sub(b.seen) > rl.ttl {
			delete(rl.buckets, k)
		}
	}

	b, ok := rl.buckets[clientKey]
	if !ok {
		b = &clientBucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[clientKey] = b
	}
	b.seen = now
	return b.lim.Allow()
}

// RateLimit wraps a handler with a per-client-IP token bucket.
func RateLimit(next http.Handler, cfg config.RateLimitConfig, logger *slog.Logger) http.Handler {
	rl := newRateLimiter(cfg)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if !rl.allow(key, time.Now()) {
			logger.Warn("rate limited", "client", key, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from the remote address. The gateway sits on a
// trusted network edge, so forwarding headers are deliberately ignored.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
	return host
}
