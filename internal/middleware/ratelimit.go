package middleware

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Limits caps requests per client; zero disables a window
type Limits struct {
	PerSecond int
	PerDay    int
}

// RateLimit limits requests per client IP over a one-second and a one-day
// window. Redis failures let the request through.
func RateLimit(rdb *redis.Client, limits Limits) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t := time.Now()
		client := c.IP()

		// Check per-second rate limit
		if limits.PerSecond > 0 {
			key := SecondKey(client, t)
			count, err := incr(c, rdb, key, 2*time.Second)
			if err == nil && count > int64(limits.PerSecond) {
				c.Set("X-RateLimit-Limit-Second", strconv.Itoa(limits.PerSecond))
				c.Set("X-RateLimit-Remaining-Second", "0")
				c.Set("Retry-After", "1")

				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error":       "rate_limit_exceeded",
					"message":     "Too many requests per second",
					"limit_type":  "per_second",
					"limit":       limits.PerSecond,
					"retry_after": 1,
				})
			}
		}

		// Check per-day rate limit
		if limits.PerDay > 0 {
			key := DayKey(client, t)
			count, err := incr(c, rdb, key, 25*time.Hour) // 25 hours to handle timezone differences
			if err == nil {
				if count > int64(limits.PerDay) {
					// Calculate seconds until midnight
					tomorrow := t.AddDate(0, 0, 1)
					midnight := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, tomorrow.Location())
					retryAfter := int64(midnight.Sub(t).Seconds())

					c.Set("X-RateLimit-Limit-Day", strconv.Itoa(limits.PerDay))
					c.Set("X-RateLimit-Remaining-Day", "0")
					c.Set("X-RateLimit-Reset-Day", strconv.FormatInt(midnight.Unix(), 10))
					c.Set("Retry-After", strconv.FormatInt(retryAfter, 10))

					return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
						"error":       "daily_quota_exceeded",
						"message":     "Daily quota exceeded",
						"limit_type":  "per_day",
						"limit":       limits.PerDay,
						"used":        count,
						"retry_after": retryAfter,
						"reset_at":    midnight.Format(time.RFC3339),
					})
				}
				c.Set("X-RateLimit-Remaining-Day", strconv.FormatInt(int64(limits.PerDay)-count, 10))
			}
		}

		if limits.PerSecond > 0 {
			c.Set("X-RateLimit-Limit-Second", strconv.Itoa(limits.PerSecond))
		}
		if limits.PerDay > 0 {
			c.Set("X-RateLimit-Limit-Day", strconv.Itoa(limits.PerDay))
		}

		return c.Next()
	}
}

// incr bumps a window counter and sets its expiry on first use
func incr(c *fiber.Ctx, rdb *redis.Client, key string, ttl time.Duration) (int64, error) {
	ctx := c.UserContext()
	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("Rate limit check failed for %s: %v", key, err)
		return 0, err
	}
	if count == 1 {
		rdb.Expire(ctx, key, ttl)
	}
	return count, nil
}

// SecondKey is the Redis counter for client's current second
func SecondKey(client string, t time.Time) string {
	return fmt.Sprintf("rl:ip:%s:second:%d", client, t.Unix())
}

// DayKey is the Redis counter for client's current day
func DayKey(client string, t time.Time) string {
	return fmt.Sprintf("rl:ip:%s:day:%s", client, t.Format("2006-01-02"))
}
