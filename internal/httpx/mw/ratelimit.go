package mw

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

var incrScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then redis.call('PEXPIRE', KEYS[1], ARGV[1]) end
return current`)

// RateLimit limits requests per window keyed by ip and subject. With a nil
// Redis client the counters live in process memory.
func RateLimit(rdb redis.UniversalClient, windowSec int, limit int) fiber.Handler {
	keyFn := func(c *fiber.Ctx) string {
		sub := ""
		if ac, _ := c.Locals("auth").(*AuthContext); ac != nil {
			sub = ac.Subject
		}
		return fmt.Sprintf("ip:%s|sub:%s", c.IP(), sub)
	}
	if rdb == nil {
		return limiter.New(limiter.Config{
			Max:          limit,
			Expiration:   time.Duration(windowSec) * time.Second,
			KeyGenerator: keyFn,
			LimitReached: func(_ *fiber.Ctx) error {
				return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
			},
		})
	}
	return func(c *fiber.Ctx) error {
		key := "rl:" + keyFn(c)
		ctx, cancel := context.WithTimeout(c.Context(), 200*time.Millisecond)
		defer cancel()
		ttlMs := int64(windowSec) * 1000
		n, err := incrScript.Run(ctx, rdb, []string{key}, ttlMs).Int64()
		if err != nil {
			// fail open
			return c.Next()
		}
		c.Set("X-RateLimit-Limit", fmt.Sprint(limit))
		c.Set("X-RateLimit-Remaining", fmt.Sprint(lo.Max([]int64{0, int64(limit) - n})))
		if n > int64(limit) {
			c.Set("Retry-After", fmt.Sprint(windowSec))
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}
