package http

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/event-gate/internal/persistence"
	apperrors "github.com/spec-kit/event-gate/pkg/util"
)

// RateLimiter throttles per client IP. It uses the shared Redis window
// when available and an in-process token bucket otherwise.
type RateLimiter struct {
	redis  *persistence.Redis
	limit  int
	window time.Duration
	logger *zap.Logger

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// NewRateLimiter builds a limiter allowing limit requests per window.
func NewRateLimiter(redis *persistence.Redis, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		redis:  redis,
		limit:  limit,
		window: window,
		logger: logger,
		local:  make(map[string]*rate.Limiter),
	}
}

// Handler returns middleware keyed by scope and client IP.
func (l *RateLimiter) Handler(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := scope + ":" + c.IP()
		if !l.allow(c, key) {
			c.Set(fiber.HeaderRetryAfter, formatSeconds(l.window))
			return apperrors.NewRateLimited()
		}
		return c.Next()
	}
}

func (l *RateLimiter) allow(c *fiber.Ctx, key string) bool {
	if l.redis.Enabled() {
		ok, err := l.redis.Allow(c.UserContext(), key, l.limit, l.window)
		if err == nil {
			return ok
		}
		l.logger.Warn("redis rate limit unavailable; using local limiter", zap.Error(err))
	}
	return l.localLimiter(key).Allow()
}

func (l *RateLimiter) localLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.local[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.window/time.Duration(l.limit)), l.limit)
		l.local[key] = lim
	}
	return lim
}

func formatSeconds(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
