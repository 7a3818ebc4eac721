package booking

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/iliyamo/wedding-booking/internal/model"
    "github.com/iliyamo/wedding-booking/internal/repository"
)

// In-memory doubles for the storage and collaborator interfaces.  The
// guest count fake applies the same monotonic merge rules as the SQL
// upsert so ordering properties can be exercised without a database.

type memCache struct {
    mu   sync.Mutex
    data map[string]string
}

func newMemCache() *memCache { return &memCache{data: map[string]string{}} }

func (c *memCache) key(userID uint64, name string) string {
    return fmt.Sprintf("%d/%s", userID, name)
}

func (c *memCache) Get(_ context.Context, userID uint64, name string) (string, bool) {
    c.mu.Lock()
    defer c.mu.Unlock()
    v, ok := c.data[c.key(userID, name)]
    return v, ok
}

func (c *memCache) Set(_ context.Context, userID uint64, name, value string) {
    c.mu.Lock()
    defer c.mu.Unlock()
    c.data[c.key(userID, name)] = value
}

func (c *memCache) Remove(_ context.Context, userID uint64, name string) {
    c.mu.Lock()
    defer c.mu.Unlock()
    delete(c.data, c.key(userID, name))
}

type memGuestCounts struct {
    mu      sync.Mutex
    rows    map[uint64]*model.GuestCount
    failGet error
}

func newMemGuestCounts() *memGuestCounts {
    return &memGuestCounts{rows: map[uint64]*model.GuestCount{}}
}

func (r *memGuestCounts) Get(_ context.Context, userID uint64) (model.GuestCount, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    if r.failGet != nil {
        return model.GuestCount{}, r.failGet
    }
    row, ok := r.rows[userID]
    if !ok {
        return model.GuestCount{}, repository.ErrGuestCountNotFound
    }
    cp := *row
    cp.LockedBy = append([]model.LockReason(nil), row.LockedBy...)
    return cp, nil
}

func (r *memGuestCounts) Upsert(_ context.Context, userID uint64, value int, locked bool) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    row, ok := r.rows[userID]
    if !ok {
        r.rows[userID] = &model.GuestCount{Value: value, Locked: locked}
        return nil
    }
    if row.Locked {
        if value > row.Value {
            row.Value = value
        }
    } else {
        row.Value = value
    }
    row.Locked = row.Locked || locked
    return nil
}

func (r *memGuestCounts) AddLockReason(_ context.Context, userID uint64, reason model.LockReason) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    row, ok := r.rows[userID]
    if !ok {
        row = &model.GuestCount{}
        r.rows[userID] = row
    }
    row.AddReason(reason)
    return nil
}

type memFlowStates struct {
    mu   sync.Mutex
    rows map[string]model.BookingFlowState
}

func newMemFlowStates() *memFlowStates {
    return &memFlowStates{rows: map[string]model.BookingFlowState{}}
}

func flowKey(userID uint64, flow model.FlowType) string {
    return fmt.Sprintf("%d/%s", userID, flow)
}

func (r *memFlowStates) Get(_ context.Context, userID uint64, flow model.FlowType) (model.BookingFlowState, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    st, ok := r.rows[flowKey(userID, flow)]
    if !ok {
        return model.BookingFlowState{}, repository.ErrFlowStateNotFound
    }
    return st, nil
}

func (r *memFlowStates) Save(_ context.Context, st model.BookingFlowState) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    key := flowKey(st.UserID, st.Flow)
    cur, ok := r.rows[key]
    if ok && model.StepRank(cur.Step) > model.StepRank(st.Step) {
        // Step only moves forward, the rest takes the latest write.
        st.Step = cur.Step
    }
    r.rows[key] = st
    return nil
}

type memBookings struct {
    mu   sync.Mutex
    rows []model.Booking
}

func (r *memBookings) Create(_ context.Context, b *model.Booking) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    for _, have := range r.rows {
        if have.UserID == b.UserID && have.Flow == b.Flow {
            return repository.ErrAlreadyBooked
        }
    }
    b.ID = uint64(len(r.rows) + 1)
    r.rows = append(r.rows, *b)
    return nil
}

func (r *memBookings) ExistsForFlow(_ context.Context, userID uint64, flow model.FlowType) (bool, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    for _, have := range r.rows {
        if have.UserID == userID && have.Flow == flow {
            return true, nil
        }
    }
    return false, nil
}

func (r *memBookings) SetReceiptURL(_ context.Context, id uint64, url string) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    for i := range r.rows {
        if r.rows[i].ID == id {
            r.rows[i].ReceiptURL = &url
            return nil
        }
    }
    return errors.New("booking not found")
}

type memCatalog struct {
    tiers  map[uint64]model.TierDefinition
    menu   []model.MenuItem
    addons []model.Addon
}

func (c *memCatalog) GetTier(_ context.Context, id uint64) (model.TierDefinition, error) {
    t, ok := c.tiers[id]
    if !ok {
        return model.TierDefinition{}, repository.ErrTierNotFound
    }
    return t, nil
}

func (c *memCatalog) GetMenuItem(_ context.Context, service model.FlowType, section model.Section, name string) (model.MenuItem, error) {
    for _, it := range c.menu {
        if it.Service == service && it.Section == section && it.Name == name {
            return it, nil
        }
    }
    return model.MenuItem{}, repository.ErrMenuItemNotFound
}

func (c *memCatalog) ListMenuItems(_ context.Context, service model.FlowType) ([]model.MenuItem, error) {
    var out []model.MenuItem
    for _, it := range c.menu {
        if it.Service == service {
            out = append(out, it)
        }
    }
    return out, nil
}

func (c *memCatalog) ListAddons(_ context.Context, service model.FlowType) ([]model.Addon, error) {
    var out []model.Addon
    for _, a := range c.addons {
        if a.Service == service {
            out = append(out, a)
        }
    }
    return out, nil
}

type fakePayments struct {
    charges []ChargeRequest
    fail    error
}

func (p *fakePayments) Charge(_ context.Context, req ChargeRequest) (ChargeResult, error) {
    if p.fail != nil {
        return ChargeResult{}, p.fail
    }
    p.charges = append(p.charges, req)
    return ChargeResult{PaymentRef: "pay-" + req.Reference}, nil
}

type fakeReceipts struct {
    fail error
}

func (r *fakeReceipts) Generate(_ context.Context, in ReceiptInput) (string, error) {
    if r.fail != nil {
        return "", r.fail
    }
    return "https://receipts.test/" + in.Reference + ".pdf", nil
}

func datePtr(t time.Time) *time.Time { return &t }
