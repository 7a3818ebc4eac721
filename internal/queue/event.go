// Package queue defines message payloads exchanged over the message
// broker, plus the background consumer that feeds completion events back
// into the in-process bus.
package queue

// BookingCompletedEvent is published when a wizard's checkout succeeds.
// It carries enough information for downstream consumers (receipt log,
// sibling flows on other instances, analytics) without querying the
// primary database.
type BookingCompletedEvent struct {
    Reference        string `json:"reference"`
    UserID           uint64 `json:"user_id"`
    Flow             string `json:"flow"`
    TierID           uint64 `json:"tier_id"`
    GuestCount       int    `json:"guest_count"`
    TotalCents       int64  `json:"total_cents"`
    DepositCents     int64  `json:"deposit_cents"`
    PlanStrategy     string `json:"plan_strategy"`
    PlanMonths       int    `json:"plan_months"`
    PerMonthCents    int64  `json:"per_month_cents"`
    LastPaymentCents int64  `json:"last_payment_cents"`
    CompletedAt      string `json:"completed_at"`
}
