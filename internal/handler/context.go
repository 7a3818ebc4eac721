package handler

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// currentUserID pulls the authenticated user ID that JWTAuth stored in
// the context.  JWT numeric claims decode as float64; older tokens may
// carry the subject as a string.
func currentUserID(c echo.Context) (uint64, bool) {
    switch v := c.Get("user_id").(type) {
    case float64:
        return uint64(v), true
    case uint64:
        return v, true
    case string:
        if n, err := strconv.ParseUint(v, 10, 64); err == nil {
            return n, true
        }
    }
    return 0, false
}
