package middleware

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
)

// rateLimitPrefix namespaces the per-client counters in Redis.
const rateLimitPrefix = "itemsorter:ratelimit:"

// RateLimit allows maxRequests per client IP in each fixed window, counted
// in Redis so every server instance shares the budget. When Redis is
// unavailable requests are let through.
func RateLimit(rdb *redis.Client, maxRequests int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			bucket := time.Now().UnixNano() / int64(window)
			key := fmt.Sprintf("%s%s:%d", rateLimitPrefix, c.RealIP(), bucket)

			pipe := rdb.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, window)
			if _, err := pipe.Exec(ctx); err != nil {
				slog.Warn("rate limiter unavailable", slog.Any("error", err))
				return next(c)
			}

			count := incr.Val()
			remaining := max(int64(maxRequests)-count, 0)
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if count > int64(maxRequests) {
				return apperror.NewTooManyRequests("Rate limit exceeded. Please try again later.")
			}
			return next(c)
		}
	}
}
