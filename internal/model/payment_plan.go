package model

import "time"

// PlanStrategy distinguishes how a booking's total is collected.
type PlanStrategy string

const (
    // PlanFullPayment collects the entire total up front.
    PlanFullPayment PlanStrategy = "FULL_PAYMENT"
    // PlanDepositPlusMonthly collects a deposit today and spreads the
    // remainder over monthly installments ending at the final due date.
    PlanDepositPlusMonthly PlanStrategy = "DEPOSIT_PLUS_MONTHLY"
)

// PaymentPlan is the concrete schedule produced for a booking total.
// All monetary fields are integer cents; only display code divides by 100.
//
// Invariants:
//  DepositCents + RemainingCents == TotalCents
//  PerMonthCents*(PlanMonths-1) + LastPaymentCents == RemainingCents
//  PlanMonths >= 1 whenever RemainingCents > 0
//
// A plan built without a confirmed event date is Provisional: only full
// payment can be finalized until the date is known.
type PaymentPlan struct {
    Strategy         PlanStrategy
    TotalCents       int64
    DepositCents     int64
    RemainingCents   int64
    PlanMonths       int
    PerMonthCents    int64
    LastPaymentCents int64
    FinalDueAt       time.Time // zero when the event date is unknown
    NextChargeAt     time.Time // zero for full payment
    Provisional      bool
}

// AmountDueTodayCents is what the payment collaborator should charge at
// checkout: the full total for full payment, otherwise the deposit.
func (p *PaymentPlan) AmountDueTodayCents() int64 {
    if p.Strategy == PlanFullPayment {
        return p.TotalCents
    }
    return p.DepositCents
}
