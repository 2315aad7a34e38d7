package http

import (
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/event-gate/internal/config"
	"github.com/spec-kit/event-gate/internal/persistence"
)

func newLimitedApp(t *testing.T, redis *persistence.Redis, limit int) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	limiter := NewRateLimiter(redis, limit, time.Minute, zap.NewNop())
	app.Post("/login", limiter.Handler("login"), func(c *fiber.Ctx) error {
		return c.SendStatus(nethttp.StatusOK)
	})
	return app
}

func hit(t *testing.T, app *fiber.App) *nethttp.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(nethttp.MethodPost, "/login", nil), -1)
	require.NoError(t, err)
	return resp
}

func TestRateLimiter_RedisWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	redis := persistence.NewRedis(config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	require.True(t, redis.Enabled())
	t.Cleanup(redis.Close)
	app := newLimitedApp(t, redis, 2)

	assert.Equal(t, nethttp.StatusOK, hit(t, app).StatusCode)
	assert.Equal(t, nethttp.StatusOK, hit(t, app).StatusCode)

	resp := hit(t, app)
	assert.Equal(t, nethttp.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "rate_limit:login:")

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, nethttp.StatusOK, hit(t, app).StatusCode)
}

func TestRateLimiter_FallsBackWhenRedisFails(t *testing.T) {
	mr := miniredis.RunT(t)
	redis := persistence.NewRedis(config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	require.True(t, redis.Enabled())
	t.Cleanup(redis.Close)
	app := newLimitedApp(t, redis, 1)

	mr.SetError("LOADING")
	assert.Equal(t, nethttp.StatusOK, hit(t, app).StatusCode)
	assert.Equal(t, nethttp.StatusTooManyRequests, hit(t, app).StatusCode)
}
