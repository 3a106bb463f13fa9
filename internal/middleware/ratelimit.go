package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/baltgc/gomotel/internal/config"
)

// RateLimit returns a Redis-backed fixed-window limiter: INCR on a
// per-client per-window key, EXPIRE on first hit, reject above the limit.
// Fixed windows admit up to 2x burst at window edges.  With no Redis client
// the middleware is a pass-through.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			window := time.Now().Unix() / int64(cfg.Window.Seconds())
			key := fmt.Sprintf("%s:%s:%d", cfg.Prefix, clientKey(cfg, c), window)

			ctx := c.Request().Context()
			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				// Redis down: let the request through rather than 500ing.
				return next(c)
			}
			if count == 1 {
				rdb.Expire(ctx, key, cfg.Window)
			}
			remaining := int64(cfg.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Limit) {
				h.Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}

// clientKey picks the identity the limit is keyed on: the authenticated
// user when present, the client IP otherwise, plus the route when the
// configured strategy asks for it.
func clientKey(cfg config.RateLimitConfig, c echo.Context) string {
	who := c.RealIP()
	if id := UserID(c); id != uuid.Nil {
		who = id.String()
	}
	if cfg.KeyStrategy == "ip_route" {
		return who + ":" + c.Request().Method + ":" + c.Path()
	}
	return who
}
