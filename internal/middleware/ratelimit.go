package middleware

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pynezz/scriptshield/internal/ratelimit"
)

// CodeRateLimited is the error code clients match on.
const CodeRateLimited = "RATE_LIMIT_EXCEEDED"

var ErrRateLimited = fiber.NewError(fiber.StatusTooManyRequests, "Rate limit exceeded")

// KeyFunc picks the limiter key for a request. An empty key skips limiting.
type KeyFunc func(c *fiber.Ctx) string

// ByIP keys on the client address.
func ByIP(prefix string) KeyFunc {
	return func(c *fiber.Ctx) string { return prefix + c.IP() }
}

// RateLimit applies l to every request, keyed by key.
func RateLimit(l *ratelimit.Limiter, key KeyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		k := key(c)
		if k == "" {
			return c.Next()
		}

		limit, _ := l.Limit()
		if err := l.Check(k); err != nil {
			retry := l.RetryAfter(k)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
			c.Set("X-RateLimit-Remaining", "0")
			return ErrRateLimited
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(l.Remaining(k)))
		return c.Next()
	}
}
