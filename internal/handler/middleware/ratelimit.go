package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"booking-engine/internal/handler/httperr"
	"booking-engine/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter limits requests per client key. Redis keeps a fixed window
// shared by every API instance; without Redis each process keeps its own
// token bucket per key.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	burst  int
	window time.Duration
	prefix string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

func NewRateLimiter(rdb *redis.Client, cfg config.RateLimitConfig) *RateLimiter {
	limit := cfg.RequestsPerMinute
	if limit <= 0 {
		limit = 120
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = limit / 4
	}
	return &RateLimiter{
		rdb:      rdb,
		limit:    limit,
		burst:    burst,
		window:   time.Minute,
		prefix:   "booking:rl",
		limiters: make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if id, ok := GetUserID(c); ok {
			key = id.String()
		}

		allowed, err := rl.allow(c.Request.Context(), key)
		if err != nil {
			// fail open
			slog.Warn("rate limiter error", "error", err)
			c.Next()
			return
		}
		if !allowed {
			slog.Warn("Rate limit exceeded", "key", key)
			c.Header("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
			httperr.Abort(c, http.StatusTooManyRequests, "Rate limit exceeded. Try again later.")
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, error) {
	if rl.rdb == nil {
		return rl.localLimiter(key).Allow(), nil
	}
	count, err := rl.incr(ctx, rl.prefix+":"+key)
	if err != nil {
		return false, err
	}
	return count <= int64(rl.limit), nil
}

// retryAfterSeconds is the worst case wait: a full window in Redis, one
// token refill locally.
func (rl *RateLimiter) retryAfterSeconds() int {
	wait := rl.window
	if rl.rdb == nil {
		wait = rl.window / time.Duration(rl.limit)
	}
	return max(1, int((wait+time.Second-1)/time.Second))
}

func (rl *RateLimiter) localLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(rl.window/time.Duration(rl.limit)), rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

func (rl *RateLimiter) incr(ctx context.Context, key string) (int64, error) {
	res, err := fixedWindowScript.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Result()
	if err != nil {
		return 0, err
	}
	switch v := res.(type) {
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected redis script result type %T", res)
	}
}
