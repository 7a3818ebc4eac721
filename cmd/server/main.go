package main // Entry point: wires storage, cache, broker and HTTP routes

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/wedding-booking/internal/booking"
    "github.com/iliyamo/wedding-booking/internal/cache"
    "github.com/iliyamo/wedding-booking/internal/config"
    "github.com/iliyamo/wedding-booking/internal/database"
    "github.com/iliyamo/wedding-booking/internal/event"
    "github.com/iliyamo/wedding-booking/internal/handler"
    "github.com/iliyamo/wedding-booking/internal/payment"
    "github.com/iliyamo/wedding-booking/internal/queue"
    "github.com/iliyamo/wedding-booking/internal/receipt"
    "github.com/iliyamo/wedding-booking/internal/repository"
    "github.com/iliyamo/wedding-booking/internal/router"
    queue_publisher "github.com/iliyamo/wedding-booking/internal/service"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable; session cache runs memory-only, response cache and rate limiting disabled")
    }

    bus := event.NewBus()
    sessions := cache.NewSessionCache(rdb)

    guestCounts := repository.NewGuestCountRepo(db)
    flowStates := repository.NewFlowStateRepo(db)
    bookings := repository.NewBookingRepo(db)
    tiers := repository.NewTierRepo(db)
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)

    guestStore := booking.NewGuestCountStore(guestCounts, sessions, bus, cfg.MaxGuests)
    engine := booking.NewPricingEngine(booking.RateConfig{
        TaxBasisPoints:         cfg.TaxBasisPoints,
        ProcessingBasisPoints:  cfg.ProcessingBasisPoints,
        ProcessingFlatFeeCents: int64(cfg.ProcessingFlatCents),
    })
    scheduler := booking.NewPaymentPlanScheduler(cfg.DepositBasisPoints, cfg.FinalDueOffsetDays)
    tracker := booking.NewBookingProgressTracker(flowStates, sessions)

    orch := booking.NewBookingFlowOrchestrator(
        guestStore, engine, scheduler, tracker,
        bookings, tiers,
        payment.NewClient(), receipt.NewGenerator(),
        sessions, bus,
        queue_publisher.PublishBookingCompleted,
    )

    // Feed completions from other instances back into the local bus.
    go func() {
        if err := queue.StartBookingConsumer(bus); err != nil {
            log.Printf("booking consumer stopped: %v", err)
        }
    }()

    e := echo.New()
    router.RegisterRoutes(e)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
    router.RegisterCatalog(e, handler.NewCatalogHandler(tiers), rdb,
        config.LoadCacheConfig(), config.LoadRateLimitConfig())
    router.RegisterBooking(e, cfg.JWTSecret,
        handler.NewGuestCountHandler(guestStore),
        handler.NewFlowHandler(orch),
        handler.NewBookingsHandler(bookings))

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
