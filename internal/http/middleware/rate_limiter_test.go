package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestMemoryLimiter_RefillsOverTime(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewMemoryLimiter(3)
	rl.now = clock.now
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow(ctx, "a")
		require.True(t, ok, "request %d", i)
	}
	ok, _ := rl.Allow(ctx, "a")
	assert.False(t, ok)

	ok, _ = rl.Allow(ctx, "b")
	assert.True(t, ok, "keys are independent")

	clock.advance(20 * time.Second)
	ok, _ = rl.Allow(ctx, "a")
	assert.True(t, ok)
	ok, _ = rl.Allow(ctx, "a")
	assert.False(t, ok)
}

func TestMemoryLimiter_EvictsRefilledBuckets(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewMemoryLimiter(3)
	rl.now = clock.now
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		ok, _ := rl.Allow(ctx, key)
		require.True(t, ok)
	}
	for i := 0; i < 3; i++ {
		_, _ = rl.Allow(ctx, "busy")
	}
	require.Len(t, rl.tokens, 4)

	// a, b and c refill within 20s; busy needs a full minute and is still touched below.
	clock.advance(30 * time.Second)
	ok, _ := rl.Allow(ctx, "busy")
	require.True(t, ok)
	clock.advance(31 * time.Second)
	ok, _ = rl.Allow(ctx, "d")
	require.True(t, ok)

	assert.NotContains(t, rl.tokens, "a")
	assert.NotContains(t, rl.tokens, "b")
	assert.NotContains(t, rl.tokens, "c")
	assert.Len(t, rl.lastRefill, len(rl.tokens))

	// An evicted key starts again with a full budget.
	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow(ctx, "a")
		require.True(t, ok, "request %d", i)
	}
	ok, _ = rl.Allow(ctx, "a")
	assert.False(t, ok)
}

func newRedisLimiter(t *testing.T, perMinute int) (*RedisLimiter, *fakeClock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 10, 0, time.UTC)}
	rl := NewRedisLimiter(client, perMinute)
	rl.now = clock.now
	return rl, clock
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	rl, clock := newRedisLimiter(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := rl.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	clock.advance(time.Minute)
	ok, err = rl.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "next window starts fresh")
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, _ := newRedisLimiter(t, 1)

	r := gin.New()
	r.Use(RateLimit(rl, zaptest.NewLogger(t)))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		return w
	}

	first := do()
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := do()
	require.Equal(t, http.StatusTooManyRequests, second.Code)

	var body struct {
		Error APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeRateLimited, body.Error.Code)
	assert.Equal(t, 60000, body.Error.RetryAfter)
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	r := gin.New()
	r.Use(RateLimit(NewRedisLimiter(client, 1), zaptest.NewLogger(t)))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
