// Package cache implements the fast, optimistic storage layer beneath
// the durable MySQL records.  Values are mirrored in an in-process map
// so reads and writes are synchronous and never fail the caller even
// when Redis is down or was never configured; Redis, when present,
// shares the same values across server instances and devices.
package cache

import (
    "context"
    "fmt"
    "log"
    "sync"
    "time"

    "github.com/redis/go-redis/v9"
)

// redisOpTimeout bounds every Redis round trip so a slow cache can never
// stall a wizard screen.
const redisOpTimeout = 500 * time.Millisecond

// sessionTTL keeps abandoned wizard leftovers from accumulating forever.
const sessionTTL = 45 * 24 * time.Hour

// SessionCache stores per-user string values under short names, e.g.
// "guest_count" or "flow:catering".  The zero semantics match a browser
// local store: Get returns ok=false for absent names, Set and Remove
// never report errors.
type SessionCache struct {
    rdb   *redis.Client // may be nil; the local mirror then carries everything
    mu    sync.RWMutex
    local map[string]string
}

// NewSessionCache builds a SessionCache.  Passing a nil client degrades
// gracefully to the in-process mirror only.
func NewSessionCache(rdb *redis.Client) *SessionCache {
    return &SessionCache{rdb: rdb, local: make(map[string]string)}
}

func sessionKey(userID uint64, name string) string {
    return fmt.Sprintf("session:%d:%s", userID, name)
}

// Get returns the cached value and whether it was present.  The local
// mirror wins; Redis is consulted only for names this process has not
// seen, which is what makes resuming on a second device work.
func (s *SessionCache) Get(ctx context.Context, userID uint64, name string) (string, bool) {
    key := sessionKey(userID, name)
    s.mu.RLock()
    v, ok := s.local[key]
    s.mu.RUnlock()
    if ok {
        return v, true
    }
    if s.rdb == nil {
        return "", false
    }
    rctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
    defer cancel()
    v, err := s.rdb.Get(rctx, key).Result()
    if err == redis.Nil {
        return "", false
    }
    if err != nil {
        log.Printf("session-cache: redis get %s failed: %v", name, err)
        return "", false
    }
    s.mu.Lock()
    s.local[key] = v
    s.mu.Unlock()
    return v, true
}

// Set writes the value synchronously to the local mirror and
// best-effort to Redis.  It never fails the caller.
func (s *SessionCache) Set(ctx context.Context, userID uint64, name, value string) {
    key := sessionKey(userID, name)
    s.mu.Lock()
    s.local[key] = value
    s.mu.Unlock()
    if s.rdb == nil {
        return
    }
    rctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
    defer cancel()
    if err := s.rdb.Set(rctx, key, value, sessionTTL).Err(); err != nil {
        log.Printf("session-cache: redis set %s failed: %v", name, err)
    }
}

// Remove deletes the value from both layers.  It never fails the caller.
func (s *SessionCache) Remove(ctx context.Context, userID uint64, name string) {
    key := sessionKey(userID, name)
    s.mu.Lock()
    delete(s.local, key)
    s.mu.Unlock()
    if s.rdb == nil {
        return
    }
    rctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
    defer cancel()
    if err := s.rdb.Del(rctx, key).Err(); err != nil {
        log.Printf("session-cache: redis del %s failed: %v", name, err)
    }
}
