package model

import "time"

// Booking records a completed purchase of one wedding service.  It is
// written exactly once, at the checkout boundary, together with the plan
// snapshot the payment collaborator was handed.
//
// Fields:
//  ID               – primary key identifier.
//  Reference        – external reference (uuid) shared with the payment
//                     collaborator and the receipt generator.
//  UserID           – couple who booked.
//  Flow             – service that was booked.
//  TierID           – tier purchased.
//  GuestCount       – guest count the price was computed against.
//  TotalCents       – grand total including taxes and fees.
//  DepositCents     – amount charged at checkout.
//  PlanStrategy     – FULL_PAYMENT or DEPOSIT_PLUS_MONTHLY.
//  PlanMonths       – number of billing cycles for the remainder.
//  PerMonthCents    – regular installment amount.
//  LastPaymentCents – final installment absorbing the rounding remainder.
//  FinalDueAt       – date the balance must reach zero (nullable).
//  NextChargeAt     – first scheduled automatic charge (nullable).
//  PaymentRef       – charge reference returned by the collaborator.
//  ReceiptURL       – durable receipt artifact, backfilled after generation.
//  CreatedAt        – creation timestamp.
type Booking struct {
    ID               uint64     // bookings.id
    Reference        string     // bookings.reference
    UserID           uint64     // bookings.user_id
    Flow             FlowType   // bookings.flow
    TierID           uint64     // bookings.tier_id
    GuestCount       int        // bookings.guest_count
    TotalCents       int64      // bookings.total_cents
    DepositCents     int64      // bookings.deposit_cents
    PlanStrategy     string     // bookings.plan_strategy
    PlanMonths       int        // bookings.plan_months
    PerMonthCents    int64      // bookings.per_month_cents
    LastPaymentCents int64      // bookings.last_payment_cents
    FinalDueAt       *time.Time // bookings.final_due_at (nullable)
    NextChargeAt     *time.Time // bookings.next_charge_at (nullable)
    PaymentRef       *string    // bookings.payment_ref (nullable)
    ReceiptURL       *string    // bookings.receipt_url (nullable)
    CreatedAt        time.Time  // bookings.created_at
}
