package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// CodeRateLimit bounds how often verification codes can be requested per
// mobile number (falling back to client IP), using a Redis counter with
// a one minute window. Cache failures fail open so an unreachable Redis
// never locks users out.
func CodeRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			MobileNumber string `json:"mobileNumber"`
		}
		_ = c.BodyParser(&req)
		subject := strings.TrimSpace(req.MobileNumber)
		if subject == "" {
			subject = c.IP()
		}
		key := "rl:code:" + subject
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many verification code requests, try again later")
		}
		return c.Next()
	}
}
