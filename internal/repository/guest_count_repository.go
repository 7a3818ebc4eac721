package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/wedding-booking/internal/model"
)

// ErrGuestCountNotFound is returned when no guest count row exists yet
// for a user.  Callers seed the record from their local cache or legacy
// fallback fields when they see this error.
var ErrGuestCountNotFound = errors.New("guest count not found")

// GuestCountRepo persists the authoritative guest count per user.  The
// record lives in two tables: `guest_counts` holds the value and lock
// flag, `guest_count_lock_reasons` holds one row per lock reason.  Both
// tables are written with commutative statements (GREATEST / OR /
// INSERT IGNORE) so concurrent wizards never need cross-flow
// transactions to stay consistent.
type GuestCountRepo struct {
    db *sql.DB
}

// NewGuestCountRepo returns a GuestCountRepo bound to the given database.
func NewGuestCountRepo(db *sql.DB) *GuestCountRepo { return &GuestCountRepo{db: db} }

// Get loads the guest count and its lock reasons.  It returns
// ErrGuestCountNotFound when the user has no row yet.
func (r *GuestCountRepo) Get(ctx context.Context, userID uint64) (model.GuestCount, error) {
    var gc model.GuestCount
    const q = `SELECT count_value, locked, updated_at FROM guest_counts WHERE user_id = ?`
    err := r.db.QueryRowContext(ctx, q, userID).Scan(&gc.Value, &gc.Locked, &gc.UpdatedAt)
    if err == sql.ErrNoRows {
        return model.GuestCount{}, ErrGuestCountNotFound
    }
    if err != nil {
        return model.GuestCount{}, err
    }
    reasons, err := r.listReasons(ctx, userID)
    if err != nil {
        return model.GuestCount{}, err
    }
    gc.LockedBy = reasons
    return gc, nil
}

// Upsert writes the value and lock flag with monotonic merge semantics:
// a locked row never loses its lock and its value only ratchets upward.
// An unlocked row accepts the new value as-is.  The statement is
// commutative, so interleaved writes from independent flows converge to
// the same state regardless of order.
func (r *GuestCountRepo) Upsert(ctx context.Context, userID uint64, value int, locked bool) error {
    const q = `INSERT INTO guest_counts (user_id, count_value, locked) VALUES (?, ?, ?)
        ON DUPLICATE KEY UPDATE
            count_value = IF(locked, GREATEST(count_value, VALUES(count_value)), VALUES(count_value)),
            locked = locked OR VALUES(locked)`
    _, err := r.db.ExecContext(ctx, q, userID, value, locked)
    return err
}

// AddLockReason attaches a lock reason if absent.  INSERT IGNORE keeps
// the reason set grow-only and makes repeated calls idempotent.
func (r *GuestCountRepo) AddLockReason(ctx context.Context, userID uint64, reason model.LockReason) error {
    const q = `INSERT IGNORE INTO guest_count_lock_reasons (user_id, reason) VALUES (?, ?)`
    _, err := r.db.ExecContext(ctx, q, userID, string(reason))
    return err
}

func (r *GuestCountRepo) listReasons(ctx context.Context, userID uint64) ([]model.LockReason, error) {
    const q = `SELECT reason FROM guest_count_lock_reasons WHERE user_id = ? ORDER BY reason`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var reasons []model.LockReason
    for rows.Next() {
        var s string
        if err := rows.Scan(&s); err != nil {
            return nil, err
        }
        reasons = append(reasons, model.LockReason(s))
    }
    return reasons, rows.Err()
}
