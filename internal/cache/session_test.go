package cache

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestSessionCacheMemoryOnly(t *testing.T) {
    // A nil Redis client degrades to the in-process mirror.
    s := NewSessionCache(nil)
    ctx := context.Background()

    _, ok := s.Get(ctx, 1, "guest_count")
    assert.False(t, ok)

    s.Set(ctx, 1, "guest_count", "120")
    v, ok := s.Get(ctx, 1, "guest_count")
    assert.True(t, ok)
    assert.Equal(t, "120", v)

    // Values are scoped per user.
    _, ok = s.Get(ctx, 2, "guest_count")
    assert.False(t, ok)

    s.Remove(ctx, 1, "guest_count")
    _, ok = s.Get(ctx, 1, "guest_count")
    assert.False(t, ok)
}
