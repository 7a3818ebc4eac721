package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/wedding-booking/internal/booking"
    "github.com/iliyamo/wedding-booking/internal/model"
)

// GuestCountHandler exposes the shared guest count.  The count is one
// value per couple, read by every wizard's pricing screen; once any
// wizard has checked out it can only grow.
type GuestCountHandler struct {
    Store *booking.GuestCountStore
}

func NewGuestCountHandler(store *booking.GuestCountStore) *GuestCountHandler {
    return &GuestCountHandler{Store: store}
}

type guestCountResp struct {
    Value    int      `json:"value"`
    Locked   bool     `json:"locked"`
    LockedBy []string `json:"locked_by,omitempty"`
}

func toGuestCountResp(gc model.GuestCount) guestCountResp {
    resp := guestCountResp{Value: gc.Value, Locked: gc.Locked}
    for _, r := range gc.LockedBy {
        resp.LockedBy = append(resp.LockedBy, string(r))
    }
    return resp
}

// Get returns the merged guest count for the authenticated couple.
func (h *GuestCountHandler) Get(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    gc, err := h.Store.Get(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load guest count failed"})
    }
    return c.JSON(http.StatusOK, toGuestCountResp(gc))
}

type setGuestCountReq struct {
    Value int `json:"value"`
}

// Set updates the guest count.  A locked count rejects decreases with a
// 422 carrying the enforced floor in the message.
func (h *GuestCountHandler) Set(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req setGuestCountReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    gc, err := h.Store.SetCount(ctx, uid, req.Value)
    if err != nil {
        if ve, ok := booking.AsValidation(err); ok {
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": ve.Reason, "field": ve.Field})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save guest count failed"})
    }
    return c.JSON(http.StatusOK, toGuestCountResp(gc))
}

type lockGuestCountReq struct {
    Value  int    `json:"value"`
    Reason string `json:"reason"`
}

// Lock freezes the count under an explicit reason.  Planners use this
// when the venue confirms final numbers outside a wizard checkout.
func (h *GuestCountHandler) Lock(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req lockGuestCountReq
    if err := c.Bind(&req); err != nil || req.Reason == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "value and reason required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    gc, err := h.Store.LockWithReason(ctx, uid, req.Value, model.LockReason(req.Reason))
    if err != nil {
        if ve, ok := booking.AsValidation(err); ok {
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": ve.Reason, "field": ve.Field})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lock guest count failed"})
    }
    return c.JSON(http.StatusOK, toGuestCountResp(gc))
}
