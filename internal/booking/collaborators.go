package booking

import (
    "context"

    "github.com/iliyamo/wedding-booking/internal/model"
)

// ChargeRequest is handed to the payment collaborator at checkout.  The
// core only ever produces the plan and the due-today figure; money
// movement, including the future scheduled charges, happens entirely on
// the collaborator's side.
type ChargeRequest struct {
    Reference           string // booking reference shared across systems
    UserID              uint64
    Flow                model.FlowType
    AmountDueTodayCents int64
    Plan                model.PaymentPlan
}

// ChargeResult reports a successful charge.
type ChargeResult struct {
    PaymentRef string // collaborator-side reference for the charge
}

// PaymentCollaborator executes the actual charge and schedules the
// remaining installments.
type PaymentCollaborator interface {
    Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// ReceiptInput is the finalized summary the document generator renders
// into a durable artifact after checkout succeeds.
type ReceiptInput struct {
    Reference  string
    UserID     uint64
    Flow       model.FlowType
    TierID     uint64
    GuestCount int
    Selections model.Selection
    TotalCents int64
    Plan       model.PaymentPlan
}

// ReceiptGenerator produces the durable receipt artifact and returns a
// retrievable URL.  Failures are logged and retried out of band; they
// never undo a completed purchase.
type ReceiptGenerator interface {
    Generate(ctx context.Context, in ReceiptInput) (string, error)
}
