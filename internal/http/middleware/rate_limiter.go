// README: Per-client rate limiting: Redis fixed window when shared, in-memory token bucket otherwise.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides whether one more request for key fits in the current budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Limit() int
	Window() time.Duration
}

// MemoryLimiter is a token bucket per key, local to one process.
type MemoryLimiter struct {
	mu           sync.Mutex
	tokens       map[string]int
	lastRefill   map[string]time.Time
	maxTokens    int
	refillPeriod time.Duration
	lastSweep    time.Time
	now          func() time.Time
}

// sweepInterval bounds how often Allow scans for buckets that have refilled to full.
const sweepInterval = time.Minute

// NewMemoryLimiter allows perMinute requests per key, refilling one token every minute/perMinute.
func NewMemoryLimiter(perMinute int) *MemoryLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &MemoryLimiter{
		tokens:       make(map[string]int),
		lastRefill:   make(map[string]time.Time),
		maxTokens:    perMinute,
		refillPeriod: time.Minute / time.Duration(perMinute),
		now:          time.Now,
	}
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= sweepInterval {
		rl.sweep(now)
	}
	if _, exists := rl.tokens[key]; !exists {
		rl.tokens[key] = rl.maxTokens
		rl.lastRefill[key] = now
	}

	elapsed := now.Sub(rl.lastRefill[key])
	if refills := int(elapsed / rl.refillPeriod); refills > 0 {
		rl.tokens[key] = min(rl.tokens[key]+refills, rl.maxTokens)
		rl.lastRefill[key] = rl.lastRefill[key].Add(time.Duration(refills) * rl.refillPeriod)
	}

	if rl.tokens[key] > 0 {
		rl.tokens[key]--
		return true, nil
	}
	return false, nil
}

// sweep drops buckets that would be full by now; a missing key starts full, so nothing changes for it.
func (rl *MemoryLimiter) sweep(now time.Time) {
	for key, tokens := range rl.tokens {
		missing := rl.maxTokens - tokens
		if now.Sub(rl.lastRefill[key]) >= time.Duration(missing)*rl.refillPeriod {
			delete(rl.tokens, key)
			delete(rl.lastRefill, key)
		}
	}
	rl.lastSweep = now
}

func (rl *MemoryLimiter) Limit() int            { return rl.maxTokens }
func (rl *MemoryLimiter) Window() time.Duration { return time.Minute }

// RedisLimiter counts requests per key in fixed one-minute windows shared by every replica.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, perMinute int) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  perMinute,
		window: time.Minute,
		prefix: "ecotravel:ratelimit",
		now:    time.Now,
	}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	slot := rl.now().UnixNano() / int64(rl.window)
	k := fmt.Sprintf("%s:%s:%d", rl.prefix, key, slot)

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(rl.limit), nil
}

func (rl *RedisLimiter) Limit() int            { return rl.limit }
func (rl *RedisLimiter) Window() time.Duration { return rl.window }

// RateLimit rejects requests over the limiter's budget with 429, keyed by client IP.
// A limiter backend error lets the request through.
func RateLimit(l Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Limit()))

		ok, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			Respond(c, http.StatusTooManyRequests, APIError{
				Code:       ErrCodeRateLimited,
				Message:    "Too many requests, please try again later",
				RetryAfter: int(l.Window().Milliseconds()),
			})
			return
		}
		c.Next()
	}
}
