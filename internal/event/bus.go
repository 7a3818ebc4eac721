// Package event provides the in-process domain event bus.  Wizards and
// screens within one server instance observe each other through it
// without direct dependencies; cross-instance propagation rides the
// message broker (internal/queue) and is re-emitted here by the
// consumer.
package event

import "sync"

// Topic names one kind of domain event.
type Topic string

const (
    // TopicGuestCountUpdated fires whenever the guest count value changes.
    TopicGuestCountUpdated Topic = "guestCountUpdated"
    // TopicGuestCountLocked fires when a checkout freezes the guest count
    // or attaches a new lock reason.
    TopicGuestCountLocked Topic = "guestCountLocked"
    // TopicSelectionsChanged fires when a tier change truncated the
    // user's picks, so dependent screens re-render.
    TopicSelectionsChanged Topic = "selectionsChanged"
    // TopicBookingsChanged fires when the set of finalized bookings
    // changed, locally or on another instance.
    TopicBookingsChanged Topic = "bookingsChanged"
    // TopicPurchaseMade fires after a checkout charge succeeded.
    TopicPurchaseMade Topic = "purchaseMade"
)

// GuestCountUpdated is the payload for TopicGuestCountUpdated.
type GuestCountUpdated struct {
    UserID uint64
    Value  int
    Locked bool
}

// GuestCountLocked is the payload for TopicGuestCountLocked.
type GuestCountLocked struct {
    UserID uint64
    Value  int
    Reason string
}

// SelectionsChanged is the payload for TopicSelectionsChanged.
type SelectionsChanged struct {
    UserID uint64
    Flow   string
}

// BookingsChanged is the payload for TopicBookingsChanged.
type BookingsChanged struct {
    UserID uint64
    Flow   string
}

// PurchaseMade is the payload for TopicPurchaseMade.
type PurchaseMade struct {
    UserID     uint64
    Flow       string
    Reference  string
    TotalCents int64
}

// Handler consumes one event payload.  Handlers run synchronously on
// the publisher's goroutine and must not block.
type Handler func(payload interface{})

// Bus is a minimal synchronous fan-out.  Subscribing during publish is
// safe; handlers registered after a publish simply miss that event.
type Bus struct {
    mu       sync.RWMutex
    handlers map[Topic][]Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
    return &Bus{handlers: make(map[Topic][]Handler)}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(t Topic, h Handler) {
    b.mu.Lock()
    defer b.mu.Unlock()
    b.handlers[t] = append(b.handlers[t], h)
}

// Publish delivers the payload to every handler of the topic, in
// subscription order.
func (b *Bus) Publish(t Topic, payload interface{}) {
    b.mu.RLock()
    hs := make([]Handler, len(b.handlers[t]))
    copy(hs, b.handlers[t])
    b.mu.RUnlock()
    for _, h := range hs {
        h(payload)
    }
}
