package middleware

import (
    "context"
    "fmt"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/wedding-booking/internal/config"
)

// RateLimit applies a fixed-window limit per client on the wrapped
// routes.  The counter lives in Redis so the limit holds across
// instances; INCR plus EXPIRE on first hit keeps it a single round trip
// in the common case.  A nil client or a Redis error fails open, since
// browsing the catalog matters more than strict throttling.
func RateLimit(rdb *redis.Client, cfg config.RateLimitConfig) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if rdb == nil || !cfg.Enabled {
                return next(c)
            }
            window := time.Now().UTC().Unix() / int64(cfg.Window.Seconds())
            key := fmt.Sprintf("%s:%s:%s:%d", cfg.Prefix, clientKey(c), c.Path(), window)

            ctx, cancel := context.WithTimeout(c.Request().Context(), 300*time.Millisecond)
            defer cancel()

            n, err := rdb.Incr(ctx, key).Result()
            if err != nil {
                return next(c)
            }
            if n == 1 {
                _ = rdb.Expire(ctx, key, cfg.Window).Err()
            }

            remaining := int64(cfg.Limit) - n
            if remaining < 0 {
                remaining = 0
            }
            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

            if n > int64(cfg.Limit) {
                retry := cfg.Window - time.Duration(time.Now().UTC().Unix()%int64(cfg.Window.Seconds()))*time.Second
                c.Response().Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
                return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
            }
            return next(c)
        }
    }
}
