package router // package router wires HTTP routes to their handlers

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/wedding-booking/internal/config"
    "github.com/iliyamo/wedding-booking/internal/handler"
    "github.com/iliyamo/wedding-booking/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints.  Register, login, refresh
// and logout live under /v1/auth without middleware; identity endpoints
// sit behind JWTAuth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1/auth", middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
    auth.POST("/logout-all", a.LogoutAll)
}

// RegisterCatalog registers the public browse endpoints.  They are
// read-only reference data, so they sit behind the shared response
// cache and the per-client rate limiter instead of auth.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, rdb *redis.Client, cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig) {
    g := e.Group("/v1/catalog",
        middleware.RateLimit(rdb, rlCfg),
        middleware.ResponseCache(rdb, cacheCfg),
    )
    g.GET("/:service/tiers", h.ListTiers)
    g.GET("/:service/menu", h.ListMenu)
    g.GET("/:service/addons", h.ListAddons)
}

// RegisterBooking registers everything behind a session: the shared
// guest count, the per-service wizards and the finalized bookings.
// Both COUPLE and PLANNER roles may drive a wizard; the administrative
// guest count lock is planner-only.
func RegisterBooking(e *echo.Echo, jwtSecret string,
    gc *handler.GuestCountHandler, fl *handler.FlowHandler, bk *handler.BookingsHandler) {

    auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole("COUPLE", "PLANNER"))

    auth.GET("/guest-count", gc.Get)
    auth.PUT("/guest-count", gc.Set)
    auth.POST("/guest-count/lock", gc.Lock, middleware.RequireRole("PLANNER"))

    auth.GET("/flows/:flow", fl.Enter)
    auth.POST("/flows/:flow/advance", fl.Advance)
    auth.PUT("/flows/:flow/tier", fl.SetTier)
    auth.POST("/flows/:flow/items", fl.AddItem)
    auth.DELETE("/flows/:flow/items", fl.RemoveItem)
    auth.PUT("/flows/:flow/addons", fl.ToggleAddon)
    auth.PUT("/flows/:flow/event-date", fl.SetEventDate)
    auth.GET("/flows/:flow/quote", fl.Quote)
    auth.POST("/flows/:flow/checkout", fl.Checkout)

    auth.GET("/bookings", bk.List)
    auth.GET("/bookings/:reference", bk.Get)
}
