package booking

import (
    "context"
    "encoding/json"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/wedding-booking/internal/model"
)

func newTestTracker() (*BookingProgressTracker, *memFlowStates, *memCache) {
    repo := newMemFlowStates()
    cache := newMemCache()
    return NewBookingProgressTracker(repo, cache), repo, cache
}

func TestSaveStepWritesBothLayers(t *testing.T) {
    tracker, repo, cache := newTestTracker()
    ctx := context.Background()

    tracker.SaveStep(ctx, model.BookingFlowState{
        UserID:     1,
        Flow:       model.FlowCatering,
        Step:       model.StepCart,
        TierID:     3,
        Selections: model.Selection{"entrees": {"filet"}},
    })

    st, err := repo.Get(ctx, 1, model.FlowCatering)
    require.NoError(t, err)
    assert.Equal(t, model.StepCart, st.Step)

    raw, ok := cache.Get(ctx, 1, "flow:catering")
    require.True(t, ok)
    var c cachedFlowState
    require.NoError(t, json.Unmarshal([]byte(raw), &c))
    assert.Equal(t, model.StepCart, c.Step)
    assert.Equal(t, uint64(3), c.TierID)
}

func TestResumeMissingEverywhere(t *testing.T) {
    tracker, _, _ := newTestTracker()
    _, found := tracker.Resume(context.Background(), 1, model.FlowCatering)
    assert.False(t, found)
}

func TestResumeFurthestWins(t *testing.T) {
    tracker, repo, cache := newTestTracker()
    ctx := context.Background()

    // Durable record is further along than the session cache.
    require.NoError(t, repo.Save(ctx, model.BookingFlowState{
        UserID: 1, Flow: model.FlowCatering, Step: model.StepContract,
        Selections: model.Selection{},
    }))
    raw, _ := json.Marshal(cachedFlowState{Step: model.StepTierSelect})
    cache.Set(ctx, 1, "flow:catering", string(raw))

    st, found := tracker.Resume(ctx, 1, model.FlowCatering)
    require.True(t, found)
    assert.Equal(t, model.StepContract, st.Step)
}

func TestResumeTieGoesToLocal(t *testing.T) {
    tracker, repo, cache := newTestTracker()
    ctx := context.Background()

    require.NoError(t, repo.Save(ctx, model.BookingFlowState{
        UserID: 1, Flow: model.FlowCatering, Step: model.StepCart, TierID: 1,
        Selections: model.Selection{},
    }))
    // Same step in the cache but with fresher edits (a different tier).
    raw, _ := json.Marshal(cachedFlowState{Step: model.StepCart, TierID: 2})
    cache.Set(ctx, 1, "flow:catering", string(raw))

    st, found := tracker.Resume(ctx, 1, model.FlowCatering)
    require.True(t, found)
    assert.Equal(t, uint64(2), st.TierID)
}

func TestResumeIgnoresCorruptCacheEntry(t *testing.T) {
    tracker, repo, cache := newTestTracker()
    ctx := context.Background()

    require.NoError(t, repo.Save(ctx, model.BookingFlowState{
        UserID: 1, Flow: model.FlowCatering, Step: model.StepMenuSelect,
        Selections: model.Selection{},
    }))
    cache.Set(ctx, 1, "flow:catering", "{not json")

    st, found := tracker.Resume(ctx, 1, model.FlowCatering)
    require.True(t, found)
    assert.Equal(t, model.StepMenuSelect, st.Step)
}

func TestStaleWriteCannotRewindDurableStep(t *testing.T) {
    tracker, repo, _ := newTestTracker()
    ctx := context.Background()

    tracker.SaveStep(ctx, model.BookingFlowState{
        UserID: 1, Flow: model.FlowCatering, Step: model.StepCheckout,
        Selections: model.Selection{},
    })
    // A backgrounded tab flushes an older snapshot.
    tracker.SaveStep(ctx, model.BookingFlowState{
        UserID: 1, Flow: model.FlowCatering, Step: model.StepMenuSelect,
        Selections: model.Selection{},
    })

    st, err := repo.Get(ctx, 1, model.FlowCatering)
    require.NoError(t, err)
    assert.Equal(t, model.StepCheckout, st.Step)
}
