package booking

import (
    "context"
    "log"
    "strconv"

    "github.com/iliyamo/wedding-booking/internal/event"
    "github.com/iliyamo/wedding-booking/internal/model"
    "github.com/iliyamo/wedding-booking/internal/repository"
)

// cacheKeyGuestCount is the session cache name for the guest count.
const cacheKeyGuestCount = "guest_count"

// legacyGuestCountKeys are older cache names still found in sessions
// written by the per-venue wizards this core replaced.  They are only
// read while seeding a missing remote record, in preference order.
var legacyGuestCountKeys = []string{"guestCount", "numberOfGuests"}

// GuestCountRepository is the durable side of the store.
type GuestCountRepository interface {
    Get(ctx context.Context, userID uint64) (model.GuestCount, error)
    Upsert(ctx context.Context, userID uint64, value int, locked bool) error
    AddLockReason(ctx context.Context, userID uint64, reason model.LockReason) error
}

// SessionCache is the synchronous local layer beneath the durable store.
// Implementations never fail the caller.
type SessionCache interface {
    Get(ctx context.Context, userID uint64, name string) (string, bool)
    Set(ctx context.Context, userID uint64, name, value string)
    Remove(ctx context.Context, userID uint64, name string)
}

// GuestCountStore is the single source of truth for an event's guest
// count and its lock state.  Every pricing computation reads it; every
// wizard's checkout locks it.  Updates follow two monotonic rules that
// make interleaved writes from independent wizards commutative: once
// locked, the value only grows, and the lock reason set only gains
// members.
type GuestCountStore struct {
    repo      GuestCountRepository
    cache     SessionCache
    bus       *event.Bus
    maxGuests int
}

// NewGuestCountStore wires the store.  maxGuests is the sanity ceiling
// applied to every write.
func NewGuestCountStore(repo GuestCountRepository, cache SessionCache, bus *event.Bus, maxGuests int) *GuestCountStore {
    return &GuestCountStore{repo: repo, cache: cache, bus: bus, maxGuests: maxGuests}
}

// Get merges the durable record with the session cache.  A missing
// remote record is seeded from the cache (current key first, then the
// legacy keys) and written back.  A cached value larger than the remote
// one also wins the merge: it is an optimistic write the remote side has
// not caught up with yet.
func (s *GuestCountStore) Get(ctx context.Context, userID uint64) (model.GuestCount, error) {
    cached, hasCached := s.cachedValue(ctx, userID)

    gc, err := s.repo.Get(ctx, userID)
    if err == repository.ErrGuestCountNotFound {
        seed := 0
        if hasCached {
            seed = cached
        }
        gc = model.GuestCount{Value: seed}
        if upErr := s.repo.Upsert(ctx, userID, seed, false); upErr != nil {
            log.Printf("guest-count: seed write failed: %v", upErr)
        }
        s.cache.Set(ctx, userID, cacheKeyGuestCount, strconv.Itoa(seed))
        return gc, nil
    }
    if err != nil {
        // Durable store unavailable: continue on local state so the
        // current screen keeps working.  The lock flag is unknown here,
        // but the monotonic SQL merge still enforces the floor remotely.
        log.Printf("guest-count: remote read failed: %v", err)
        if hasCached {
            return model.GuestCount{Value: cached}, nil
        }
        return model.GuestCount{}, nil
    }

    if hasCached && cached > gc.Value {
        gc.Value = cached
        if upErr := s.repo.Upsert(ctx, userID, cached, gc.Locked); upErr != nil {
            log.Printf("guest-count: merge write failed: %v", upErr)
        }
    }
    s.cache.Set(ctx, userID, cacheKeyGuestCount, strconv.Itoa(gc.Value))
    return gc, nil
}

// SetCount updates the guest count.  Values above the ceiling are
// clamped; negative values and decreases below a locked floor are
// rejected with a ValidationError so the UI visibly reflects the floor.
// The cache is written synchronously; the durable write is best-effort.
func (s *GuestCountStore) SetCount(ctx context.Context, userID uint64, value int) (model.GuestCount, error) {
    if value < 0 {
        return model.GuestCount{}, &ValidationError{Field: "guest_count", Reason: "must not be negative"}
    }
    if value > s.maxGuests {
        value = s.maxGuests
    }
    cur, err := s.Get(ctx, userID)
    if err != nil {
        return model.GuestCount{}, err
    }
    if cur.Locked && value < cur.Value {
        return cur, &ValidationError{
            Field:  "guest_count",
            Reason: "count is locked and cannot go below " + strconv.Itoa(cur.Value),
        }
    }

    s.cache.Set(ctx, userID, cacheKeyGuestCount, strconv.Itoa(value))
    if err := s.repo.Upsert(ctx, userID, value, cur.Locked); err != nil {
        log.Printf("guest-count: remote write failed: %v", err)
    }
    cur.Value = value
    s.bus.Publish(event.TopicGuestCountUpdated, event.GuestCountUpdated{
        UserID: userID, Value: cur.Value, Locked: cur.Locked,
    })
    return cur, nil
}

// LockWithReason freezes the count at the checkout boundary.  It is
// idempotent: an existing lock keeps its value unless the caller brings
// a higher one, and the reason is added only if absent.  Unlike SetCount
// the durable write must succeed, because payment proceeds right after.
func (s *GuestCountStore) LockWithReason(ctx context.Context, userID uint64, value int, reason model.LockReason) (model.GuestCount, error) {
    if value < 0 {
        return model.GuestCount{}, &ValidationError{Field: "guest_count", Reason: "must not be negative"}
    }
    if value > s.maxGuests {
        value = s.maxGuests
    }
    cur, err := s.Get(ctx, userID)
    if err != nil {
        return model.GuestCount{}, err
    }
    if value < cur.Value {
        value = cur.Value
    }
    if err := s.repo.Upsert(ctx, userID, value, true); err != nil {
        return model.GuestCount{}, err
    }
    if err := s.repo.AddLockReason(ctx, userID, reason); err != nil {
        return model.GuestCount{}, err
    }
    s.cache.Set(ctx, userID, cacheKeyGuestCount, strconv.Itoa(value))

    cur.Value = value
    cur.Locked = true
    cur.AddReason(reason)
    s.bus.Publish(event.TopicGuestCountLocked, event.GuestCountLocked{
        UserID: userID, Value: value, Reason: string(reason),
    })
    return cur, nil
}

// cachedValue reads the cache under the current key, falling back to the
// legacy names.
func (s *GuestCountStore) cachedValue(ctx context.Context, userID uint64) (int, bool) {
    keys := append([]string{cacheKeyGuestCount}, legacyGuestCountKeys...)
    for _, k := range keys {
        raw, ok := s.cache.Get(ctx, userID, k)
        if !ok {
            continue
        }
        v, err := strconv.Atoi(raw)
        if err != nil || v < 0 {
            continue
        }
        return v, true
    }
    return 0, false
}
