// Package receipt renders finalized bookings into durable receipt
// documents through the external document service.
package receipt

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "os"
    "time"

    "github.com/iliyamo/wedding-booking/internal/booking"
)

// Generator implements booking.ReceiptGenerator against the document
// service's HTTP API.  When no RECEIPT_API_URL is configured the
// generator runs in sandbox mode and returns a synthetic URL, so a
// missing document service never blocks checkout in development.
type Generator struct {
    baseURL string
    http    *http.Client
}

// NewGenerator reads RECEIPT_API_URL from the environment.  An empty
// value selects sandbox mode.
func NewGenerator() *Generator {
    return &Generator{
        baseURL: os.Getenv("RECEIPT_API_URL"),
        http:    &http.Client{Timeout: 20 * time.Second},
    }
}

type receiptPayload struct {
    Reference    string              `json:"reference"`
    UserID       uint64              `json:"user_id"`
    Flow         string              `json:"flow"`
    TierID       uint64              `json:"tier_id"`
    GuestCount   int                 `json:"guest_count"`
    Selections   map[string][]string `json:"selections"`
    TotalCents   int64               `json:"total_cents"`
    DepositCents int64               `json:"deposit_cents"`
    PlanStrategy string              `json:"plan_strategy"`
    PlanMonths   int                 `json:"plan_months"`
}

type receiptResponse struct {
    URL string `json:"url"`
}

// Generate asks the document service to render the receipt and returns
// the URL of the produced artifact.
func (g *Generator) Generate(ctx context.Context, in booking.ReceiptInput) (string, error) {
    if g.baseURL == "" {
        return "sandbox://receipts/" + in.Reference, nil
    }

    sel := make(map[string][]string, len(in.Selections))
    for section, names := range in.Selections {
        sel[string(section)] = names
    }
    body, err := json.Marshal(receiptPayload{
        Reference:    in.Reference,
        UserID:       in.UserID,
        Flow:         string(in.Flow),
        TierID:       in.TierID,
        GuestCount:   in.GuestCount,
        Selections:   sel,
        TotalCents:   in.TotalCents,
        DepositCents: in.Plan.DepositCents,
        PlanStrategy: string(in.Plan.Strategy),
        PlanMonths:   in.Plan.PlanMonths,
    })
    if err != nil {
        return "", err
    }

    req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/receipts", bytes.NewReader(body))
    if err != nil {
        return "", err
    }
    req.Header.Set("Content-Type", "application/json")

    resp, err := g.http.Do(req)
    if err != nil {
        return "", err
    }
    defer resp.Body.Close()

    if resp.StatusCode < 200 || resp.StatusCode > 299 {
        return "", fmt.Errorf("document service returned status %d", resp.StatusCode)
    }

    var out receiptResponse
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        return "", fmt.Errorf("decode receipt response: %w", err)
    }
    if out.URL == "" {
        return "", fmt.Errorf("document service returned no url")
    }
    return out.URL, nil
}
