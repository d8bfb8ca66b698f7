package middleware

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
	// IdleTTL is how long an unused limiter is kept before it is dropped.
	IdleTTL time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter throttles requests per X-User-ID, falling back to the client IP
// for anonymous callers.
type RateLimiter struct {
	config   RateLimitConfig
	limiters sync.Map

	pruneMu   sync.Mutex
	lastPrune time.Time
	now       func() time.Time
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 600
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 60
	}
	// an idle limiter is full again after Burst intervals; dropping it
	// earlier would hand out a fresh burst
	refill := time.Duration(cfg.Burst) * (time.Minute / time.Duration(cfg.RequestsPerMinute))
	if cfg.IdleTTL < refill {
		cfg.IdleTTL = refill
	}
	if cfg.IdleTTL < 10*time.Minute {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{config: cfg, now: time.Now, lastPrune: time.Now()}
}

func (rl *RateLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	v, ok := rl.limiters.Load(key)
	if !ok {
		// fiber strings point into the reused request buffer
		v, _ = rl.limiters.LoadOrStore(utils.CopyString(key), &visitor{
			limiter: rate.NewLimiter(
				rate.Every(time.Minute/time.Duration(rl.config.RequestsPerMinute)),
				rl.config.Burst,
			),
		})
	}
	vis := v.(*visitor)
	vis.lastSeen.Store(now.UnixNano())
	return vis.limiter
}

// prune drops limiters that have not been used for IdleTTL. It runs at most
// once per IdleTTL.
func (rl *RateLimiter) prune(now time.Time) {
	rl.pruneMu.Lock()
	if now.Sub(rl.lastPrune) < rl.config.IdleTTL {
		rl.pruneMu.Unlock()
		return
	}
	rl.lastPrune = now
	rl.pruneMu.Unlock()

	cutoff := now.Add(-rl.config.IdleTTL).UnixNano()
	rl.limiters.Range(func(key, value any) bool {
		if value.(*visitor).lastSeen.Load() < cutoff {
			rl.limiters.Delete(key)
		}
		return true
	})
}

func requestKey(c *fiber.Ctx) string {
	// only well-formed identities get their own bucket
	if id, err := uuid.Parse(c.Get("X-User-ID")); err == nil {
		return id.String()
	}
	return "ip:" + c.IP()
}

func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := rl.now()
		rl.prune(now)

		if !rl.limiterFor(requestKey(c), now).Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
