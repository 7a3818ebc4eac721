package booking

import (
    "context"
    "errors"
    "fmt"
    "log"
    "sync"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/wedding-booking/internal/event"
    "github.com/iliyamo/wedding-booking/internal/model"
    "github.com/iliyamo/wedding-booking/internal/queue"
    "github.com/iliyamo/wedding-booking/internal/repository"
)

// ErrFlowComplete is returned when a wizard that already reached a
// terminal step is asked to advance again.  Handlers route to the
// already-booked screen instead of replaying the wizard.
var ErrFlowComplete = errors.New("flow already complete")

// BookingRepository is the durable side of finalized bookings.
type BookingRepository interface {
    Create(ctx context.Context, b *model.Booking) error
    ExistsForFlow(ctx context.Context, userID uint64, flow model.FlowType) (bool, error)
    SetReceiptURL(ctx context.Context, id uint64, url string) error
}

// TierCatalog reads the per-service reference data.
type TierCatalog interface {
    GetTier(ctx context.Context, id uint64) (model.TierDefinition, error)
    GetMenuItem(ctx context.Context, service model.FlowType, section model.Section, name string) (model.MenuItem, error)
    ListMenuItems(ctx context.Context, service model.FlowType) ([]model.MenuItem, error)
    ListAddons(ctx context.Context, service model.FlowType) ([]model.Addon, error)
}

// BrokerPublisher pushes a completion event onto the message broker.
type BrokerPublisher func(ctx context.Context, ev queue.BookingCompletedEvent) error

// BookingFlowOrchestrator is the per-wizard state machine.  It sequences
// the screens (menu → cart → date confirmation → contract → checkout →
// completion), invoking the guest count store, pricing engine, scheduler
// and progress tracker at the right transitions.  One orchestrator
// serves all flow types; the flow is passed per call.
//
// No financial or locking action happens anywhere except the checkout
// boundary, so a wizard abandoned at any step leaves nothing behind but
// its progress snapshot.
type BookingFlowOrchestrator struct {
    guests    *GuestCountStore
    engine    *PricingEngine
    scheduler *PaymentPlanScheduler
    tracker   *BookingProgressTracker
    bookings  BookingRepository
    tiers     TierCatalog
    payments  PaymentCollaborator
    receipts  ReceiptGenerator
    cache     SessionCache
    bus       *event.Bus
    publish   BrokerPublisher

    // completions remembers sibling-flow completions observed on the
    // in-process bus (fed locally and by the broker consumer), keyed
    // "userID:flow".  The bookings table remains the fallback.
    completions sync.Map
}

// NewBookingFlowOrchestrator wires the orchestrator and subscribes it to
// bookingsChanged events so sibling completions on other instances are
// noticed without a direct dependency between flows.
func NewBookingFlowOrchestrator(
    guests *GuestCountStore,
    engine *PricingEngine,
    scheduler *PaymentPlanScheduler,
    tracker *BookingProgressTracker,
    bookings BookingRepository,
    tiers TierCatalog,
    payments PaymentCollaborator,
    receipts ReceiptGenerator,
    cache SessionCache,
    bus *event.Bus,
    publish BrokerPublisher,
) *BookingFlowOrchestrator {
    o := &BookingFlowOrchestrator{
        guests:    guests,
        engine:    engine,
        scheduler: scheduler,
        tracker:   tracker,
        bookings:  bookings,
        tiers:     tiers,
        payments:  payments,
        receipts:  receipts,
        cache:     cache,
        bus:       bus,
        publish:   publish,
    }
    bus.Subscribe(event.TopicBookingsChanged, func(payload interface{}) {
        if ev, ok := payload.(event.BookingsChanged); ok {
            o.completions.Store(completionKey(ev.UserID, model.FlowType(ev.Flow)), true)
        }
    })
    return o
}

func completionKey(userID uint64, flow model.FlowType) string {
    return fmt.Sprintf("%d:%s", userID, flow)
}

func returnToCacheKey(flow model.FlowType) string { return "flow:" + string(flow) + ":return_to" }

// Enter resumes a wizard, creating its state at the intro step on first
// entry.  The second return value is true when the wizard is already
// complete, in which case the caller shows the already-booked screen.
func (o *BookingFlowOrchestrator) Enter(ctx context.Context, userID uint64, flow model.FlowType) (model.BookingFlowState, bool, error) {
    if !model.ValidFlow(flow) {
        return model.BookingFlowState{}, false, &ValidationError{Field: "flow", Reason: "unknown flow"}
    }
    st, found := o.tracker.Resume(ctx, userID, flow)
    if !found {
        st = model.BookingFlowState{
            UserID:     userID,
            Flow:       flow,
            Step:       model.StepIntro,
            Selections: model.Selection{},
        }
        o.tracker.SaveStep(ctx, st)
        return st, false, nil
    }
    return st, model.IsTerminalStep(st.Step), nil
}

// Advance moves the wizard to the target step, applying the transition
// guards.  Progression past the cart without a resolved event date
// detours to the date-collection step and remembers where the user was
// headed; entering checkout locks the guest count for every flow.
// Terminal steps are never a valid target here; they are reached only
// through Checkout.
func (o *BookingFlowOrchestrator) Advance(ctx context.Context, userID uint64, flow model.FlowType, target model.StepID) (model.BookingFlowState, error) {
    if !model.ValidStep(target) {
        return model.BookingFlowState{}, &ValidationError{Field: "step", Reason: "unknown step"}
    }
    if model.IsTerminalStep(target) {
        return model.BookingFlowState{}, &ValidationError{Field: "step", Reason: "completion is reached through checkout"}
    }
    st, _, err := o.Enter(ctx, userID, flow)
    if err != nil {
        return model.BookingFlowState{}, err
    }
    if model.IsTerminalStep(st.Step) {
        return st, ErrFlowComplete
    }

    if st.EventDate == nil && model.StepRank(target) > model.StepRank(model.StepDateCollect) {
        // Detour: collect the date first, then come back to where the
        // user was headed.
        o.cache.Set(ctx, userID, returnToCacheKey(flow), string(target))
        st.Step = model.StepDateCollect
        o.tracker.SaveStep(ctx, st)
        return st, nil
    }

    if target == model.StepCheckout {
        gc, err := o.guests.Get(ctx, userID)
        if err != nil {
            return st, err
        }
        if _, err := o.guests.LockWithReason(ctx, userID, gc.Value, model.CheckoutLockReason(flow)); err != nil {
            return st, err
        }
    }

    st.Step = target
    o.tracker.SaveStep(ctx, st)
    return st, nil
}

// SetTier activates a tier for the wizard.  Selections are normalized to
// the new tier's allowances before any pricing; when picks were cut, a
// selectionsChanged event tells dependent screens to re-render.
func (o *BookingFlowOrchestrator) SetTier(ctx context.Context, userID uint64, flow model.FlowType, tierID uint64) (model.BookingFlowState, error) {
    st, _, err := o.Enter(ctx, userID, flow)
    if err != nil {
        return model.BookingFlowState{}, err
    }
    if model.IsTerminalStep(st.Step) {
        return st, ErrFlowComplete
    }
    tier, err := o.tiers.GetTier(ctx, tierID)
    if err != nil {
        return st, err
    }
    if tier.Service != flow {
        return st, &ValidationError{Field: "tier_id", Reason: "tier belongs to a different service"}
    }
    st.TierID = tierID
    if o.engine.ChangeTier(st.Selections, &tier) {
        o.bus.Publish(event.TopicSelectionsChanged, event.SelectionsChanged{
            UserID: userID, Flow: string(flow),
        })
    }
    o.tracker.SaveStep(ctx, st)
    return st, nil
}

// AddItem picks a menu item, enforcing the section allowance at the
// boundary rather than capping after the fact.
func (o *BookingFlowOrchestrator) AddItem(ctx context.Context, userID uint64, flow model.FlowType, section model.Section, name string) (model.BookingFlowState, error) {
    st, _, err := o.Enter(ctx, userID, flow)
    if err != nil {
        return model.BookingFlowState{}, err
    }
    if model.IsTerminalStep(st.Step) {
        return st, ErrFlowComplete
    }
    if st.TierID == 0 {
        return st, ErrTierRequired
    }
    tier, err := o.tiers.GetTier(ctx, st.TierID)
    if err != nil {
        return st, err
    }
    item, err := o.tiers.GetMenuItem(ctx, flow, section, name)
    if err != nil {
        return st, err
    }
    if err := o.engine.AddSelection(st.Selections, &tier, item); err != nil {
        return st, err
    }
    o.tracker.SaveStep(ctx, st)
    return st, nil
}

// RemoveItem drops a previously picked item.  Unknown names are a no-op.
func (o *BookingFlowOrchestrator) RemoveItem(ctx context.Context, userID uint64, flow model.FlowType, section model.Section, name string) (model.BookingFlowState, error) {
    st, _, err := o.Enter(ctx, userID, flow)
    if err != nil {
        return model.BookingFlowState{}, err
    }
    if model.IsTerminalStep(st.Step) {
        return st, ErrFlowComplete
    }
    st.Selections.Remove(section, name)
    o.tracker.SaveStep(ctx, st)
    return st, nil
}

// ToggleAddon flips a per-guest addon on or off.
func (o *BookingFlowOrchestrator) ToggleAddon(ctx context.Context, userID uint64, flow model.FlowType, addonID uint64, enabled bool) (model.BookingFlowState, error) {
    st, _, err := o.Enter(ctx, userID, flow)
    if err != nil {
        return model.BookingFlowState{}, err
    }
    if model.IsTerminalStep(st.Step) {
        return st, ErrFlowComplete
    }
    addons, err := o.tiers.ListAddons(ctx, flow)
    if err != nil {
        return st, err
    }
    known := false
    for _, a := range addons {
        if a.ID == addonID {
            known = true
            break
        }
    }
    if !known {
        return st, &ValidationError{Field: "addon_id", Reason: "unknown addon"}
    }
    st.ToggleAddon(addonID, enabled)
    o.tracker.SaveStep(ctx, st)
    return st, nil
}

// SetEventDate confirms the event date.  If the wizard had detoured to
// date collection, it returns to the step the user originally requested.
func (o *BookingFlowOrchestrator) SetEventDate(ctx context.Context, userID uint64, flow model.FlowType, date time.Time) (model.BookingFlowState, error) {
    if date.IsZero() {
        return model.BookingFlowState{}, &ValidationError{Field: "event_date", Reason: "required"}
    }
    st, _, err := o.Enter(ctx, userID, flow)
    if err != nil {
        return model.BookingFlowState{}, err
    }
    if model.IsTerminalStep(st.Step) {
        return st, ErrFlowComplete
    }
    d := date.UTC()
    st.EventDate = &d
    o.tracker.SaveStep(ctx, st)

    if raw, ok := o.cache.Get(ctx, userID, returnToCacheKey(flow)); ok {
        o.cache.Remove(ctx, userID, returnToCacheKey(flow))
        if target := model.StepID(raw); model.ValidStep(target) && !model.IsTerminalStep(target) {
            return o.Advance(ctx, userID, flow, target)
        }
    }
    return st, nil
}

// Quote recomputes the cart pricing from the current selections and
// guest count, plus the payment plan preview for the chosen strategy.
// The plan is nil (not an error) when installments cannot be scheduled
// before the event date is confirmed.
func (o *BookingFlowOrchestrator) Quote(ctx context.Context, userID uint64, flow model.FlowType, payInFull bool) (Quote, *model.PaymentPlan, error) {
    st, _, err := o.Enter(ctx, userID, flow)
    if err != nil {
        return Quote{}, nil, err
    }
    if st.TierID == 0 {
        return Quote{}, nil, ErrTierRequired
    }
    q, _, err := o.price(ctx, userID, &st)
    if err != nil {
        return Quote{}, nil, err
    }
    plan, err := o.scheduler.Build(q.TotalCents, st.EventDate, payInFull)
    if err == ErrEventDateRequired {
        return q, nil, nil
    }
    if err != nil {
        return q, nil, err
    }
    return q, &plan, nil
}

// price loads the reference data and runs the engine against the current
// guest count.  It returns the quote and the guest count used.
func (o *BookingFlowOrchestrator) price(ctx context.Context, userID uint64, st *model.BookingFlowState) (Quote, int, error) {
    tier, err := o.tiers.GetTier(ctx, st.TierID)
    if err != nil {
        return Quote{}, 0, err
    }
    gc, err := o.guests.Get(ctx, userID)
    if err != nil {
        return Quote{}, 0, err
    }
    menu, err := o.tiers.ListMenuItems(ctx, st.Flow)
    if err != nil {
        return Quote{}, 0, err
    }
    all, err := o.tiers.ListAddons(ctx, st.Flow)
    if err != nil {
        return Quote{}, 0, err
    }
    var enabled []model.Addon
    for _, a := range all {
        if st.HasAddon(a.ID) {
            enabled = append(enabled, a)
        }
    }
    // Stale picks from a previous tier must never be priced.
    if o.engine.ChangeTier(st.Selections, &tier) {
        o.bus.Publish(event.TopicSelectionsChanged, event.SelectionsChanged{
            UserID: userID, Flow: string(st.Flow),
        })
    }
    return o.engine.Price(&tier, gc.Value, st.Selections, menu, enabled), gc.Value, nil
}

// Checkout finalizes the purchase: it locks the guest count under the
// flow's reason, prices the cart one last time, builds the payment plan,
// delegates the charge, records the booking and routes the wizard to its
// completion step.  The terminal step depends on whether a sibling flow
// is already booked.
func (o *BookingFlowOrchestrator) Checkout(ctx context.Context, userID uint64, flow model.FlowType, payInFull bool) (model.Booking, error) {
    st, _, err := o.Enter(ctx, userID, flow)
    if err != nil {
        return model.Booking{}, err
    }
    if model.IsTerminalStep(st.Step) {
        return model.Booking{}, repository.ErrAlreadyBooked
    }
    if st.TierID == 0 {
        return model.Booking{}, ErrTierRequired
    }
    if exists, err := o.bookings.ExistsForFlow(ctx, userID, flow); err != nil {
        return model.Booking{}, err
    } else if exists {
        return model.Booking{}, repository.ErrAlreadyBooked
    }

    gc, err := o.guests.Get(ctx, userID)
    if err != nil {
        return model.Booking{}, err
    }
    locked, err := o.guests.LockWithReason(ctx, userID, gc.Value, model.CheckoutLockReason(flow))
    if err != nil {
        return model.Booking{}, err
    }

    q, _, err := o.price(ctx, userID, &st)
    if err != nil {
        return model.Booking{}, err
    }
    plan, err := o.scheduler.Build(q.TotalCents, st.EventDate, payInFull)
    if err != nil {
        return model.Booking{}, err
    }

    reference := uuid.NewString()
    charged, err := o.payments.Charge(ctx, ChargeRequest{
        Reference:           reference,
        UserID:              userID,
        Flow:                flow,
        AmountDueTodayCents: plan.AmountDueTodayCents(),
        Plan:                plan,
    })
    if err != nil {
        return model.Booking{}, fmt.Errorf("%w: %v", ErrChargeFailed, err)
    }

    b := model.Booking{
        Reference:        reference,
        UserID:           userID,
        Flow:             flow,
        TierID:           st.TierID,
        GuestCount:       locked.Value,
        TotalCents:       plan.TotalCents,
        DepositCents:     plan.DepositCents,
        PlanStrategy:     string(plan.Strategy),
        PlanMonths:       plan.PlanMonths,
        PerMonthCents:    plan.PerMonthCents,
        LastPaymentCents: plan.LastPaymentCents,
        PaymentRef:       &charged.PaymentRef,
        CreatedAt:        time.Now().UTC(),
    }
    if !plan.FinalDueAt.IsZero() {
        t := plan.FinalDueAt
        b.FinalDueAt = &t
    }
    if !plan.NextChargeAt.IsZero() {
        t := plan.NextChargeAt
        b.NextChargeAt = &t
    }
    if err := o.bookings.Create(ctx, &b); err != nil {
        // The charge already went through; never drop that on the floor.
        log.Printf("checkout: booking record failed after charge %s: %v", reference, err)
        return model.Booking{}, err
    }

    if url, err := o.receipts.Generate(ctx, ReceiptInput{
        Reference:  reference,
        UserID:     userID,
        Flow:       flow,
        TierID:     st.TierID,
        GuestCount: locked.Value,
        Selections: st.Selections,
        TotalCents: plan.TotalCents,
        Plan:       plan,
    }); err != nil {
        log.Printf("checkout: receipt generation failed for %s: %v", reference, err)
    } else {
        b.ReceiptURL = &url
        if err := o.bookings.SetReceiptURL(ctx, b.ID, url); err != nil {
            log.Printf("checkout: receipt url save failed for %s: %v", reference, err)
        }
    }

    st.Step = o.completionStep(ctx, userID, flow)
    o.tracker.SaveStep(ctx, st)

    o.completions.Store(completionKey(userID, flow), true)
    o.bus.Publish(event.TopicPurchaseMade, event.PurchaseMade{
        UserID: userID, Flow: string(flow), Reference: reference, TotalCents: plan.TotalCents,
    })
    o.bus.Publish(event.TopicBookingsChanged, event.BookingsChanged{
        UserID: userID, Flow: string(flow),
    })
    if o.publish != nil {
        ev := queue.BookingCompletedEvent{
            Reference:        reference,
            UserID:           userID,
            Flow:             string(flow),
            TierID:           st.TierID,
            GuestCount:       locked.Value,
            TotalCents:       plan.TotalCents,
            DepositCents:     plan.DepositCents,
            PlanStrategy:     string(plan.Strategy),
            PlanMonths:       plan.PlanMonths,
            PerMonthCents:    plan.PerMonthCents,
            LastPaymentCents: plan.LastPaymentCents,
            CompletedAt:      time.Now().UTC().Format(time.RFC3339),
        }
        if err := o.publish(ctx, ev); err != nil {
            log.Printf("checkout: broker publish failed for %s: %v", reference, err)
        }
    }
    return b, nil
}

// completionStep picks the wizard's terminal screen: the shared "all
// booked" terminal when the sibling flow already completed, otherwise
// the single-service thank-you.
func (o *BookingFlowOrchestrator) completionStep(ctx context.Context, userID uint64, flow model.FlowType) model.StepID {
    sibling, ok := model.SiblingFlow(flow)
    if !ok {
        return model.StepThankYou
    }
    if _, seen := o.completions.Load(completionKey(userID, sibling)); seen {
        return model.StepReturn
    }
    booked, err := o.bookings.ExistsForFlow(ctx, userID, sibling)
    if err != nil {
        log.Printf("completion: sibling lookup failed for %s: %v", sibling, err)
        return model.StepThankYou
    }
    if booked {
        return model.StepReturn
    }
    return model.StepThankYou
}
