package event

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestBusFanOut(t *testing.T) {
    b := NewBus()
    var first, second []interface{}
    b.Subscribe(TopicGuestCountUpdated, func(p interface{}) { first = append(first, p) })
    b.Subscribe(TopicGuestCountUpdated, func(p interface{}) { second = append(second, p) })

    b.Publish(TopicGuestCountUpdated, GuestCountUpdated{UserID: 1, Value: 42})

    assert.Len(t, first, 1)
    assert.Len(t, second, 1)
    assert.Equal(t, GuestCountUpdated{UserID: 1, Value: 42}, first[0])
}

func TestBusTopicIsolation(t *testing.T) {
    b := NewBus()
    var got int
    b.Subscribe(TopicPurchaseMade, func(interface{}) { got++ })

    b.Publish(TopicBookingsChanged, BookingsChanged{UserID: 1})
    assert.Zero(t, got)
}

func TestBusSubscribeDuringPublish(t *testing.T) {
    b := NewBus()
    var late int
    b.Subscribe(TopicBookingsChanged, func(interface{}) {
        b.Subscribe(TopicBookingsChanged, func(interface{}) { late++ })
    })

    b.Publish(TopicBookingsChanged, BookingsChanged{UserID: 1})
    assert.Zero(t, late) // registered after the snapshot, misses this event

    b.Publish(TopicBookingsChanged, BookingsChanged{UserID: 1})
    assert.Equal(t, 1, late)
}
