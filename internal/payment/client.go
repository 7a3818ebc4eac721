// Package payment talks to the external payment provider.  The provider
// owns all money movement: the core hands it a plan and the amount due
// today, and the provider schedules any remaining installments itself.
package payment

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "os"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/wedding-booking/internal/booking"
)

// Client implements booking.PaymentCollaborator against the provider's
// HTTP API.  When no PAYMENT_API_URL is configured the client runs in
// sandbox mode and approves every charge with a synthetic reference,
// which keeps local development and tests independent of the provider.
type Client struct {
    baseURL string
    http    *http.Client
}

// NewClient reads PAYMENT_API_URL from the environment.  An empty value
// selects sandbox mode.
func NewClient() *Client {
    return &Client{
        baseURL: os.Getenv("PAYMENT_API_URL"),
        http:    &http.Client{Timeout: 15 * time.Second},
    }
}

type chargePayload struct {
    Reference           string `json:"reference"`
    UserID              uint64 `json:"user_id"`
    Flow                string `json:"flow"`
    AmountDueTodayCents int64  `json:"amount_due_today_cents"`
    TotalCents          int64  `json:"total_cents"`
    DepositCents        int64  `json:"deposit_cents"`
    PlanStrategy        string `json:"plan_strategy"`
    PlanMonths          int    `json:"plan_months"`
    PerMonthCents       int64  `json:"per_month_cents"`
    LastPaymentCents    int64  `json:"last_payment_cents"`
    FinalDueAt          string `json:"final_due_at,omitempty"`
    NextChargeAt        string `json:"next_charge_at,omitempty"`
}

type chargeResponse struct {
    PaymentRef string `json:"payment_ref"`
    Status     string `json:"status"`
}

// Charge posts the charge request to the provider and returns its
// reference for the payment.  Any non-2xx response is an error; the
// caller treats a failed charge as a failed checkout.
func (c *Client) Charge(ctx context.Context, req booking.ChargeRequest) (booking.ChargeResult, error) {
    if c.baseURL == "" {
        // Sandbox mode: approve with a synthetic provider reference.
        return booking.ChargeResult{PaymentRef: "sandbox-" + uuid.NewString()}, nil
    }

    p := chargePayload{
        Reference:           req.Reference,
        UserID:              req.UserID,
        Flow:                string(req.Flow),
        AmountDueTodayCents: req.AmountDueTodayCents,
        TotalCents:          req.Plan.TotalCents,
        DepositCents:        req.Plan.DepositCents,
        PlanStrategy:        string(req.Plan.Strategy),
        PlanMonths:          req.Plan.PlanMonths,
        PerMonthCents:       req.Plan.PerMonthCents,
        LastPaymentCents:    req.Plan.LastPaymentCents,
    }
    if !req.Plan.FinalDueAt.IsZero() {
        p.FinalDueAt = req.Plan.FinalDueAt.UTC().Format(time.RFC3339)
    }
    if !req.Plan.NextChargeAt.IsZero() {
        p.NextChargeAt = req.Plan.NextChargeAt.UTC().Format(time.RFC3339)
    }

    body, err := json.Marshal(p)
    if err != nil {
        return booking.ChargeResult{}, err
    }
    httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", bytes.NewReader(body))
    if err != nil {
        return booking.ChargeResult{}, err
    }
    httpReq.Header.Set("Content-Type", "application/json")

    resp, err := c.http.Do(httpReq)
    if err != nil {
        return booking.ChargeResult{}, err
    }
    defer resp.Body.Close()

    if resp.StatusCode < 200 || resp.StatusCode > 299 {
        return booking.ChargeResult{}, fmt.Errorf("payment provider returned status %d", resp.StatusCode)
    }

    var out chargeResponse
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        return booking.ChargeResult{}, fmt.Errorf("decode charge response: %w", err)
    }
    if out.PaymentRef == "" {
        return booking.ChargeResult{}, fmt.Errorf("payment provider returned no reference")
    }
    return booking.ChargeResult{PaymentRef: out.PaymentRef}, nil
}
