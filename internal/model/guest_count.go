package model

import "time"

// LockReason tags the booking category that caused the guest count to
// become immutable.  Several reasons may be attached to the same record
// at once, e.g. when both the venue and the caterer have been booked.
type LockReason string

// Known lock reasons.  Flow-scoped variants record which wizard's
// checkout froze the count.
const (
    LockReasonVenue            LockReason = "venue"
    LockReasonPlanner          LockReason = "planner"
    LockReasonCatering         LockReason = "catering"
    LockReasonDesserts         LockReason = "desserts"
    LockReasonFinal            LockReason = "final"
    LockReasonCateringCheckout LockReason = "catering-checkout"
    LockReasonDessertsCheckout LockReason = "desserts-checkout"
)

// GuestCount is the single authoritative guest count for a couple's
// event.  Once Locked is true the value may only grow, and LockedBy only
// ever gains reasons; both rules make concurrent updates from independent
// wizards commutative.
//
// Fields:
//  Value     – number of guests, never negative.
//  Locked    – whether the count has been relied upon by a checkout.
//  LockedBy  – set of reasons that caused or re-affirmed the lock.
//  UpdatedAt – timestamp of the last change.
type GuestCount struct {
    Value     int          // guest_counts.count_value
    Locked    bool         // guest_counts.locked
    LockedBy  []LockReason // guest_count_lock_reasons rows
    UpdatedAt time.Time    // guest_counts.updated_at
}

// HasReason reports whether the given reason is already attached.
func (g *GuestCount) HasReason(r LockReason) bool {
    for _, have := range g.LockedBy {
        if have == r {
            return true
        }
    }
    return false
}

// AddReason attaches a reason if absent and reports whether the set grew.
func (g *GuestCount) AddReason(r LockReason) bool {
    if g.HasReason(r) {
        return false
    }
    g.LockedBy = append(g.LockedBy, r)
    return true
}
