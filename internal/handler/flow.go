package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/wedding-booking/internal/booking"
    "github.com/iliyamo/wedding-booking/internal/model"
    "github.com/iliyamo/wedding-booking/internal/repository"
)

// FlowHandler drives the per-service booking wizards.  Every route is
// scoped by a :flow path parameter (venue, catering, desserts, florals,
// music, planning); the orchestrator holds all sequencing rules, the
// handler only translates HTTP to calls and errors to status codes.
type FlowHandler struct {
    Orch *booking.BookingFlowOrchestrator
}

func NewFlowHandler(orch *booking.BookingFlowOrchestrator) *FlowHandler {
    return &FlowHandler{Orch: orch}
}

type flowStateResp struct {
    Flow       string              `json:"flow"`
    Step       string              `json:"step"`
    TierID     uint64              `json:"tier_id,omitempty"`
    Selections map[string][]string `json:"selections"`
    Addons     []uint64            `json:"addons,omitempty"`
    EventDate  *string             `json:"event_date,omitempty"`
    Complete   bool                `json:"complete"`
}

func toFlowStateResp(st model.BookingFlowState) flowStateResp {
    resp := flowStateResp{
        Flow:       string(st.Flow),
        Step:       string(st.Step),
        TierID:     st.TierID,
        Selections: map[string][]string{},
        Addons:     st.Addons,
        Complete:   model.IsTerminalStep(st.Step),
    }
    for sec, names := range st.Selections {
        resp.Selections[string(sec)] = names
    }
    if st.EventDate != nil {
        d := st.EventDate.UTC().Format("2006-01-02")
        resp.EventDate = &d
    }
    return resp
}

// flowError maps orchestrator errors to HTTP responses.
func flowError(c echo.Context, err error) error {
    if ve, ok := booking.AsValidation(err); ok {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": ve.Reason, "field": ve.Field})
    }
    switch {
    case errors.Is(err, booking.ErrFlowComplete), errors.Is(err, repository.ErrAlreadyBooked):
        return c.JSON(http.StatusConflict, echo.Map{"error": "flow already booked"})
    case errors.Is(err, booking.ErrTierRequired):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "select a tier first"})
    case errors.Is(err, booking.ErrEventDateRequired):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "confirm the event date first"})
    case errors.Is(err, booking.ErrChargeFailed):
        return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment was declined"})
    case errors.Is(err, repository.ErrTierNotFound), errors.Is(err, repository.ErrMenuItemNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func (h *FlowHandler) flowParam(c echo.Context) (model.FlowType, bool) {
    f := model.FlowType(c.Param("flow"))
    return f, model.ValidFlow(f)
}

// Enter resumes the wizard (or starts it at the intro step).
func (h *FlowHandler) Enter(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    flow, ok := h.flowParam(c)
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown flow"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    st, complete, err := h.Orch.Enter(ctx, uid, flow)
    if err != nil {
        return flowError(c, err)
    }
    resp := toFlowStateResp(st)
    resp.Complete = complete
    return c.JSON(http.StatusOK, resp)
}

type advanceReq struct {
    Step string `json:"step"`
}

// Advance moves the wizard to the requested step.
func (h *FlowHandler) Advance(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    flow, ok := h.flowParam(c)
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown flow"})
    }
    var req advanceReq
    if err := c.Bind(&req); err != nil || req.Step == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "step required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    st, err := h.Orch.Advance(ctx, uid, flow, model.StepID(req.Step))
    if err != nil {
        return flowError(c, err)
    }
    return c.JSON(http.StatusOK, toFlowStateResp(st))
}

type setTierReq struct {
    TierID uint64 `json:"tier_id"`
}

// SetTier activates a tier for the wizard.
func (h *FlowHandler) SetTier(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    flow, ok := h.flowParam(c)
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown flow"})
    }
    var req setTierReq
    if err := c.Bind(&req); err != nil || req.TierID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "tier_id required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    st, err := h.Orch.SetTier(ctx, uid, flow, req.TierID)
    if err != nil {
        return flowError(c, err)
    }
    return c.JSON(http.StatusOK, toFlowStateResp(st))
}

type selectionReq struct {
    Section string `json:"section"`
    Name    string `json:"name"`
}

// AddItem picks a menu item within the tier's section allowance.
func (h *FlowHandler) AddItem(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    flow, ok := h.flowParam(c)
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown flow"})
    }
    var req selectionReq
    if err := c.Bind(&req); err != nil || req.Section == "" || req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "section and name required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    st, err := h.Orch.AddItem(ctx, uid, flow, model.Section(req.Section), req.Name)
    if err != nil {
        return flowError(c, err)
    }
    return c.JSON(http.StatusOK, toFlowStateResp(st))
}

// RemoveItem drops a picked menu item.
func (h *FlowHandler) RemoveItem(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    flow, ok := h.flowParam(c)
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown flow"})
    }
    var req selectionReq
    if err := c.Bind(&req); err != nil || req.Section == "" || req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "section and name required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    st, err := h.Orch.RemoveItem(ctx, uid, flow, model.Section(req.Section), req.Name)
    if err != nil {
        return flowError(c, err)
    }
    return c.JSON(http.StatusOK, toFlowStateResp(st))
}

type toggleAddonReq struct {
    AddonID uint64 `json:"addon_id"`
    Enabled bool   `json:"enabled"`
}

// ToggleAddon flips a per-guest addon.
func (h *FlowHandler) ToggleAddon(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    flow, ok := h.flowParam(c)
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown flow"})
    }
    var req toggleAddonReq
    if err := c.Bind(&req); err != nil || req.AddonID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "addon_id required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    st, err := h.Orch.ToggleAddon(ctx, uid, flow, req.AddonID, req.Enabled)
    if err != nil {
        return flowError(c, err)
    }
    return c.JSON(http.StatusOK, toFlowStateResp(st))
}

type planResp struct {
    Strategy         string  `json:"strategy"`
    TotalCents       int64   `json:"total_cents"`
    DepositCents     int64   `json:"deposit_cents"`
    RemainingCents   int64   `json:"remaining_cents"`
    PlanMonths       int     `json:"plan_months"`
    PerMonthCents    int64   `json:"per_month_cents"`
    LastPaymentCents int64   `json:"last_payment_cents"`
    AmountDueToday   int64   `json:"amount_due_today_cents"`
    FinalDueAt       *string `json:"final_due_at,omitempty"`
    NextChargeAt     *string `json:"next_charge_at,omitempty"`
    Provisional      bool    `json:"provisional"`
}

func toPlanResp(p *model.PaymentPlan) planResp {
    resp := planResp{
        Strategy:         string(p.Strategy),
        TotalCents:       p.TotalCents,
        DepositCents:     p.DepositCents,
        RemainingCents:   p.RemainingCents,
        PlanMonths:       p.PlanMonths,
        PerMonthCents:    p.PerMonthCents,
        LastPaymentCents: p.LastPaymentCents,
        AmountDueToday:   p.AmountDueTodayCents(),
        Provisional:      p.Provisional,
    }
    if !p.FinalDueAt.IsZero() {
        d := p.FinalDueAt.UTC().Format("2006-01-02")
        resp.FinalDueAt = &d
    }
    if !p.NextChargeAt.IsZero() {
        d := p.NextChargeAt.UTC().Format("2006-01-02")
        resp.NextChargeAt = &d
    }
    return resp
}

type eventDateReq struct {
    EventDate string `json:"event_date"` // YYYY-MM-DD
}

// SetEventDate confirms the wedding date for the wizard.
func (h *FlowHandler) SetEventDate(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    flow, ok := h.flowParam(c)
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown flow"})
    }
    var req eventDateReq
    if err := c.Bind(&req); err != nil || req.EventDate == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_date required"})
    }
    date, err := time.ParseInLocation("2006-01-02", req.EventDate, time.UTC)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_date must be YYYY-MM-DD"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    st, err := h.Orch.SetEventDate(ctx, uid, flow, date)
    if err != nil {
        return flowError(c, err)
    }
    return c.JSON(http.StatusOK, toFlowStateResp(st))
}

// Quote prices the current cart and previews the payment plan.  The
// plan half is null when installments need an event date that is not
// confirmed yet.
func (h *FlowHandler) Quote(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    flow, ok := h.flowParam(c)
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown flow"})
    }
    payInFull := c.QueryParam("pay_in_full") == "true"

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    quote, plan, err := h.Orch.Quote(ctx, uid, flow, payInFull)
    if err != nil {
        return flowError(c, err)
    }
    resp := echo.Map{"quote": quote, "plan": nil}
    if plan != nil {
        resp["plan"] = toPlanResp(plan)
    }
    return c.JSON(http.StatusOK, resp)
}

type checkoutReq struct {
    PayInFull bool `json:"pay_in_full"`
}

// Checkout finalizes the purchase and returns the booking record.
func (h *FlowHandler) Checkout(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    flow, ok := h.flowParam(c)
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown flow"})
    }
    var req checkoutReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    // Checkout talks to the payment provider, so it gets a wider
    // deadline than the purely local endpoints.
    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()

    b, err := h.Orch.Checkout(ctx, uid, flow, req.PayInFull)
    if err != nil {
        return flowError(c, err)
    }
    return c.JSON(http.StatusCreated, toBookingResp(b))
}
