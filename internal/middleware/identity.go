package middleware

// identity.go holds helpers shared by the cache and rate limit
// middleware.  Both key their Redis entries per user so one couple's
// traffic never evicts or throttles another's.

import (
    "fmt"

    "github.com/labstack/echo/v4"
)

// clientKey returns a stable identifier for the requester: the
// authenticated user ID when present, otherwise the remote IP.
func clientKey(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case string:
        if v != "" {
            return v
        }
    case float64:
        return fmt.Sprintf("%.0f", v)
    case uint64:
        return fmt.Sprintf("%d", v)
    }
    return "ip:" + c.RealIP()
}
