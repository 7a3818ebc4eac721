package booking

import (
    "context"
    "encoding/json"
    "log"
    "time"

    "github.com/iliyamo/wedding-booking/internal/model"
    "github.com/iliyamo/wedding-booking/internal/repository"
)

// FlowStateRepository is the durable side of the progress tracker.
type FlowStateRepository interface {
    Get(ctx context.Context, userID uint64, flow model.FlowType) (model.BookingFlowState, error)
    Save(ctx context.Context, st model.BookingFlowState) error
}

// cachedFlowState is the JSON shape written to the session cache under
// "flow:<name>".  It mirrors BookingFlowState minus the identifying
// fields the cache key already carries.
type cachedFlowState struct {
    Step       model.StepID    `json:"step"`
    TierID     uint64          `json:"tier_id"`
    Selections model.Selection `json:"selections"`
    Addons     []uint64        `json:"addons,omitempty"`
    EventDate  *time.Time      `json:"event_date,omitempty"`
}

// BookingProgressTracker persists and resumes a wizard's current step
// across sessions and devices.  The session cache is written
// synchronously and never fails the caller; the durable record is
// best-effort.  On resume the two sources are merged furthest-wins, so
// a stale write from a backgrounded tab can never rewind a user.
type BookingProgressTracker struct {
    repo  FlowStateRepository
    cache SessionCache
}

// NewBookingProgressTracker wires the tracker.
func NewBookingProgressTracker(repo FlowStateRepository, cache SessionCache) *BookingProgressTracker {
    return &BookingProgressTracker{repo: repo, cache: cache}
}

func flowCacheKey(flow model.FlowType) string { return "flow:" + string(flow) }

// SaveStep records the snapshot.  The cache write is synchronous; the
// durable write is fire-and-forget from the caller's perspective, with
// failures logged and absorbed (the row's own furthest-wins upsert makes
// a later retry safe).
func (t *BookingProgressTracker) SaveStep(ctx context.Context, st model.BookingFlowState) {
    if raw, err := json.Marshal(cachedFlowState{
        Step:       st.Step,
        TierID:     st.TierID,
        Selections: st.Selections,
        Addons:     st.Addons,
        EventDate:  st.EventDate,
    }); err == nil {
        t.cache.Set(ctx, st.UserID, flowCacheKey(st.Flow), string(raw))
    }
    if err := t.repo.Save(ctx, st); err != nil {
        log.Printf("progress: remote save failed for %s: %v", st.Flow, err)
    }
}

// Resume returns the furthest snapshot recorded for the wizard and
// whether one exists at all.  When cache and durable record disagree,
// the step that ranks further in the flow's canonical ordering wins;
// selections travel with the winning side.
func (t *BookingProgressTracker) Resume(ctx context.Context, userID uint64, flow model.FlowType) (model.BookingFlowState, bool) {
    local, hasLocal := t.cachedState(ctx, userID, flow)

    remote, err := t.repo.Get(ctx, userID, flow)
    hasRemote := err == nil
    if err != nil && err != repository.ErrFlowStateNotFound {
        log.Printf("progress: remote read failed for %s: %v", flow, err)
    }

    switch {
    case hasLocal && hasRemote:
        // Ties go to the local side: it holds the latest edits on this
        // device.
        if model.StepRank(remote.Step) > model.StepRank(local.Step) {
            return remote, true
        }
        return local, true
    case hasRemote:
        return remote, true
    case hasLocal:
        return local, true
    default:
        return model.BookingFlowState{}, false
    }
}

func (t *BookingProgressTracker) cachedState(ctx context.Context, userID uint64, flow model.FlowType) (model.BookingFlowState, bool) {
    raw, ok := t.cache.Get(ctx, userID, flowCacheKey(flow))
    if !ok {
        return model.BookingFlowState{}, false
    }
    var c cachedFlowState
    if err := json.Unmarshal([]byte(raw), &c); err != nil || !model.ValidStep(c.Step) {
        return model.BookingFlowState{}, false
    }
    st := model.BookingFlowState{
        UserID:     userID,
        Flow:       flow,
        Step:       c.Step,
        TierID:     c.TierID,
        Selections: c.Selections,
        Addons:     c.Addons,
        EventDate:  c.EventDate,
    }
    if st.Selections == nil {
        st.Selections = model.Selection{}
    }
    return st, true
}
