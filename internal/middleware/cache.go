package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/wedding-booking/internal/config"
)

// bodyRecorder captures the response body while streaming it to the
// client, up to a size cap so a runaway response cannot bloat Redis.
type bodyRecorder struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    limit  int
}

func (w *bodyRecorder) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
    if w.limit <= 0 || w.buf.Len()+len(b) <= w.limit {
        w.buf.Write(b)
    } else {
        w.limit = -1 // overflowed, drop the capture entirely
        w.buf.Reset()
    }
    return w.ResponseWriter.Write(b)
}

// ResponseCache caches successful JSON GET responses for the public
// catalog endpoints.  Entries are keyed by route and query string only,
// never by user, so it must wrap anonymous read-only routes exclusively.
// A nil Redis client disables the cache.
func ResponseCache(rdb *redis.Client, cfg config.CacheConfig) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if rdb == nil || !cfg.Enabled || c.Request().Method != http.MethodGet {
                return next(c)
            }
            key := catalogCacheKey(cfg.Prefix, c)

            ctx, cancel := context.WithTimeout(c.Request().Context(), 300*time.Millisecond)
            cached, err := rdb.Get(ctx, key).Bytes()
            cancel()
            if err == nil {
                return c.JSONBlob(http.StatusOK, cached)
            }

            rec := &bodyRecorder{
                ResponseWriter: c.Response().Writer,
                status:         http.StatusOK,
                limit:          cfg.MaxBodyBytes,
            }
            c.Response().Writer = rec
            if err := next(c); err != nil {
                return err
            }

            if rec.status == http.StatusOK && rec.limit >= 0 && rec.buf.Len() > 0 {
                ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
                _ = rdb.Set(ctx, key, rec.buf.Bytes(), cfg.TTL).Err()
                cancel()
            }
            return nil
        }
    }
}

func catalogCacheKey(prefix string, c echo.Context) string {
    sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
    return fmt.Sprintf("%s:%x", prefix, sum[:])
}
