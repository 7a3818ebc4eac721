package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/wedding-booking/internal/model"
    "github.com/iliyamo/wedding-booking/internal/repository"
)

// BookingsHandler serves the read side of finalized bookings.
type BookingsHandler struct {
    Bookings *repository.BookingRepo
}

func NewBookingsHandler(b *repository.BookingRepo) *BookingsHandler {
    return &BookingsHandler{Bookings: b}
}

type bookingResp struct {
    Reference        string  `json:"reference"`
    Flow             string  `json:"flow"`
    TierID           uint64  `json:"tier_id"`
    GuestCount       int     `json:"guest_count"`
    TotalCents       int64   `json:"total_cents"`
    DepositCents     int64   `json:"deposit_cents"`
    PlanStrategy     string  `json:"plan_strategy"`
    PlanMonths       int     `json:"plan_months"`
    PerMonthCents    int64   `json:"per_month_cents"`
    LastPaymentCents int64   `json:"last_payment_cents"`
    FinalDueAt       *string `json:"final_due_at,omitempty"`
    NextChargeAt     *string `json:"next_charge_at,omitempty"`
    ReceiptURL       *string `json:"receipt_url,omitempty"`
    CreatedAt        string  `json:"created_at"`
}

func toBookingResp(b model.Booking) bookingResp {
    resp := bookingResp{
        Reference:        b.Reference,
        Flow:             string(b.Flow),
        TierID:           b.TierID,
        GuestCount:       b.GuestCount,
        TotalCents:       b.TotalCents,
        DepositCents:     b.DepositCents,
        PlanStrategy:     b.PlanStrategy,
        PlanMonths:       b.PlanMonths,
        PerMonthCents:    b.PerMonthCents,
        LastPaymentCents: b.LastPaymentCents,
        ReceiptURL:       b.ReceiptURL,
        CreatedAt:        b.CreatedAt.UTC().Format(time.RFC3339),
    }
    if b.FinalDueAt != nil {
        d := b.FinalDueAt.UTC().Format("2006-01-02")
        resp.FinalDueAt = &d
    }
    if b.NextChargeAt != nil {
        d := b.NextChargeAt.UTC().Format("2006-01-02")
        resp.NextChargeAt = &d
    }
    return resp
}

// List returns the authenticated couple's bookings, newest first.
func (h *BookingsHandler) List(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    items, err := h.Bookings.ListByUser(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load bookings failed"})
    }
    out := make([]bookingResp, 0, len(items))
    for _, b := range items {
        out = append(out, toBookingResp(b))
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Get fetches one booking by its reference.  Couples can only read
// their own bookings.
func (h *BookingsHandler) Get(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ref := c.Param("reference")
    if ref == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    b, err := h.Bookings.GetOwnedByReference(ctx, uid, ref)
    switch {
    case err == repository.ErrBookingNotFound:
        return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
    case err == repository.ErrForbidden:
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case err != nil:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load booking failed"})
    }
    return c.JSON(http.StatusOK, toBookingResp(b))
}
