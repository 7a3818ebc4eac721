package model

import "time"

// FlowType identifies one purchase wizard.  Each couple has at most one
// instance of each flow.
type FlowType string

const (
    FlowVenue    FlowType = "venue"
    FlowCatering FlowType = "catering"
    FlowDesserts FlowType = "desserts"
    FlowFlorals  FlowType = "florals"
    FlowMusic    FlowType = "music"
    FlowPlanning FlowType = "planning"
)

// StepID names a screen within a wizard.  Every flow orders its steps
// totally so that "further along" is well defined when two persisted
// snapshots disagree.
type StepID string

const (
    StepIntro       StepID = "intro"
    StepTierSelect  StepID = "tier"
    StepMenuSelect  StepID = "menu"
    StepCart        StepID = "cart"
    StepDateCollect StepID = "datecollect" // detour when no event date is known yet
    StepDateConfirm StepID = "dateconfirm"
    StepContract    StepID = "contract"
    StepCheckout    StepID = "checkout"
    StepThankYou    StepID = "thankyou"
    StepReturn      StepID = "return" // terminal shown when sibling services are booked too
)

// canonicalSteps is the shared wizard path.  Flows without a menu (venue,
// planning, music) simply never route users to the menu step, but keep
// the full order so ranks stay comparable across persisted snapshots.
var canonicalSteps = []StepID{
    StepIntro,
    StepTierSelect,
    StepMenuSelect,
    StepCart,
    StepDateCollect,
    StepDateConfirm,
    StepContract,
    StepCheckout,
    StepThankYou,
    StepReturn,
}

// stepRanks maps each step to its position in the canonical order.
var stepRanks = func() map[StepID]int {
    m := make(map[StepID]int, len(canonicalSteps))
    for i, s := range canonicalSteps {
        m[s] = i
    }
    return m
}()

// StepRank returns the position of a step in the flow's canonical order.
// Unknown steps rank before intro so corrupt snapshots never win a merge.
func StepRank(s StepID) int {
    if r, ok := stepRanks[s]; ok {
        return r
    }
    return -1
}

// FurthestStep returns whichever of the two steps is further along.
// Ties favor the first argument.
func FurthestStep(a, b StepID) StepID {
    if StepRank(b) > StepRank(a) {
        return b
    }
    return a
}

// IsTerminalStep reports whether the step ends the wizard.  Re-entering a
// finished flow routes to an already-booked screen, never back to start.
func IsTerminalStep(s StepID) bool { return s == StepThankYou || s == StepReturn }

// ValidStep reports whether s is a known step id.
func ValidStep(s StepID) bool { return StepRank(s) >= 0 }

// ValidFlow reports whether f is a known flow type.
func ValidFlow(f FlowType) bool {
    switch f {
    case FlowVenue, FlowCatering, FlowDesserts, FlowFlorals, FlowMusic, FlowPlanning:
        return true
    }
    return false
}

// SiblingFlow returns the companion flow whose completion changes this
// flow's terminal screen (catering and desserts advertise each other).
// The second return is false when the flow has no sibling.
func SiblingFlow(f FlowType) (FlowType, bool) {
    switch f {
    case FlowCatering:
        return FlowDesserts, true
    case FlowDesserts:
        return FlowCatering, true
    }
    return "", false
}

// CheckoutLockReason maps a flow to the lock reason recorded when its
// checkout freezes the guest count.
func CheckoutLockReason(f FlowType) LockReason {
    switch f {
    case FlowCatering:
        return LockReasonCateringCheckout
    case FlowDesserts:
        return LockReasonDessertsCheckout
    case FlowVenue:
        return LockReasonVenue
    case FlowPlanning:
        return LockReasonPlanner
    }
    return LockReason(f)
}

// BookingFlowState is the persisted progress snapshot of one wizard
// instance.  It is created on first entry and becomes terminal once the
// wizard reaches a completion step.
//
// Fields:
//  UserID     – owning couple.
//  Flow       – which wizard this snapshot belongs to.
//  Step       – furthest screen reached.
//  TierID     – active tier, zero before tier selection.
//  Selections – chosen items per section.
//  Addons     – ids of enabled per-guest addons.
//  EventDate  – confirmed event date, nil while unknown.
//  UpdatedAt  – last write timestamp.
type BookingFlowState struct {
    UserID     uint64     // flow_states.user_id
    Flow       FlowType   // flow_states.flow
    Step       StepID     // flow_states.step
    TierID     uint64     // flow_states.tier_id
    Selections Selection  // flow_states.selections (JSON)
    Addons     []uint64   // flow_states.addons (JSON)
    EventDate  *time.Time // flow_states.event_date (nullable)
    UpdatedAt  time.Time  // flow_states.updated_at
}

// HasAddon reports whether the addon id is enabled.
func (s *BookingFlowState) HasAddon(id uint64) bool {
    for _, a := range s.Addons {
        if a == id {
            return true
        }
    }
    return false
}

// ToggleAddon enables or disables an addon id.
func (s *BookingFlowState) ToggleAddon(id uint64, enabled bool) {
    if enabled {
        if !s.HasAddon(id) {
            s.Addons = append(s.Addons, id)
        }
        return
    }
    for i, a := range s.Addons {
        if a == id {
            s.Addons = append(s.Addons[:i], s.Addons[i+1:]...)
            return
        }
    }
}
