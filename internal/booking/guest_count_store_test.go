package booking

import (
    "context"
    "errors"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/wedding-booking/internal/event"
    "github.com/iliyamo/wedding-booking/internal/model"
)

func newTestGuestStore() (*GuestCountStore, *memGuestCounts, *memCache, *event.Bus) {
    repo := newMemGuestCounts()
    cache := newMemCache()
    bus := event.NewBus()
    return NewGuestCountStore(repo, cache, bus, 500), repo, cache, bus
}

func TestSetCountAndGet(t *testing.T) {
    store, _, _, _ := newTestGuestStore()
    ctx := context.Background()

    gc, err := store.SetCount(ctx, 1, 120)
    require.NoError(t, err)
    assert.Equal(t, 120, gc.Value)
    assert.False(t, gc.Locked)

    gc, err = store.Get(ctx, 1)
    require.NoError(t, err)
    assert.Equal(t, 120, gc.Value)
}

func TestSetCountRejectsNegative(t *testing.T) {
    store, _, _, _ := newTestGuestStore()
    _, err := store.SetCount(context.Background(), 1, -5)
    assert.True(t, IsValidation(err))
}

func TestSetCountClampsToCeiling(t *testing.T) {
    store, _, _, _ := newTestGuestStore()
    gc, err := store.SetCount(context.Background(), 1, 10_000)
    require.NoError(t, err)
    assert.Equal(t, 500, gc.Value)
}

func TestLockedCountEnforcesFloor(t *testing.T) {
    store, _, _, _ := newTestGuestStore()
    ctx := context.Background()

    _, err := store.SetCount(ctx, 1, 150)
    require.NoError(t, err)
    _, err = store.LockWithReason(ctx, 1, 150, model.LockReasonCateringCheckout)
    require.NoError(t, err)

    // Decrease below the locked floor is rejected with the floor visible.
    _, err = store.SetCount(ctx, 1, 100)
    require.Error(t, err)
    assert.True(t, IsValidation(err))

    // Increases stay allowed.
    gc, err := store.SetCount(ctx, 1, 180)
    require.NoError(t, err)
    assert.Equal(t, 180, gc.Value)
    assert.True(t, gc.Locked)
}

func TestLockIsIdempotentAndAccumulatesReasons(t *testing.T) {
    store, _, _, _ := newTestGuestStore()
    ctx := context.Background()

    gc, err := store.LockWithReason(ctx, 1, 100, model.LockReasonCateringCheckout)
    require.NoError(t, err)
    assert.True(t, gc.Locked)
    assert.Equal(t, 100, gc.Value)

    gc, err = store.LockWithReason(ctx, 1, 100, model.LockReasonCateringCheckout)
    require.NoError(t, err)
    assert.Equal(t, 100, gc.Value)

    gc, err = store.LockWithReason(ctx, 1, 90, model.LockReasonDessertsCheckout)
    require.NoError(t, err)
    // A lower value never shrinks a locked count.
    assert.Equal(t, 100, gc.Value)
    assert.True(t, gc.HasReason(model.LockReasonCateringCheckout))
    assert.True(t, gc.HasReason(model.LockReasonDessertsCheckout))
}

func TestTwoFlowLocksCommute(t *testing.T) {
    // Locking from two wizards in either order converges to the same
    // value and reason set.
    ctx := context.Background()

    run := func(first, second model.LockReason, firstVal, secondVal int) model.GuestCount {
        store, _, _, _ := newTestGuestStore()
        _, err := store.LockWithReason(ctx, 1, firstVal, first)
        require.NoError(t, err)
        gc, err := store.LockWithReason(ctx, 1, secondVal, second)
        require.NoError(t, err)
        return gc
    }

    a := run(model.LockReasonCateringCheckout, model.LockReasonDessertsCheckout, 120, 140)
    b := run(model.LockReasonDessertsCheckout, model.LockReasonCateringCheckout, 140, 120)

    assert.Equal(t, a.Value, b.Value)
    assert.Equal(t, 140, a.Value)
    for _, r := range []model.LockReason{model.LockReasonCateringCheckout, model.LockReasonDessertsCheckout} {
        assert.True(t, a.HasReason(r))
        assert.True(t, b.HasReason(r))
    }
}

func TestGetSeedsMissingRecordFromLegacyCacheKey(t *testing.T) {
    store, repo, cache, _ := newTestGuestStore()
    ctx := context.Background()

    // A session written by the old per-venue wizard.
    cache.Set(ctx, 1, "numberOfGuests", "85")

    gc, err := store.Get(ctx, 1)
    require.NoError(t, err)
    assert.Equal(t, 85, gc.Value)

    // The durable record was seeded.
    row, err := repo.Get(ctx, 1)
    require.NoError(t, err)
    assert.Equal(t, 85, row.Value)
}

func TestGetFallsBackToCacheWhenRemoteDown(t *testing.T) {
    store, repo, cache, _ := newTestGuestStore()
    ctx := context.Background()

    cache.Set(ctx, 1, "guest_count", "60")
    repo.failGet = errors.New("connection refused")

    gc, err := store.Get(ctx, 1)
    require.NoError(t, err)
    assert.Equal(t, 60, gc.Value)
}

func TestCachedValueWinsMergeWhenLarger(t *testing.T) {
    store, repo, cache, _ := newTestGuestStore()
    ctx := context.Background()

    require.NoError(t, repo.Upsert(ctx, 1, 50, false))
    cache.Set(ctx, 1, "guest_count", "75")

    gc, err := store.Get(ctx, 1)
    require.NoError(t, err)
    assert.Equal(t, 75, gc.Value)

    row, err := repo.Get(ctx, 1)
    require.NoError(t, err)
    assert.Equal(t, 75, row.Value)
}

func TestSetCountPublishesUpdate(t *testing.T) {
    store, _, _, bus := newTestGuestStore()

    var got []event.GuestCountUpdated
    bus.Subscribe(event.TopicGuestCountUpdated, func(p interface{}) {
        if ev, ok := p.(event.GuestCountUpdated); ok {
            got = append(got, ev)
        }
    })

    _, err := store.SetCount(context.Background(), 1, 42)
    require.NoError(t, err)
    require.Len(t, got, 1)
    assert.Equal(t, 42, got[0].Value)
}
