package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"

    "github.com/iliyamo/wedding-booking/internal/model"
)

// ErrAlreadyBooked is returned when a flow that already has a finalized
// booking attempts to check out again.  It wraps ErrConflict, so
// handlers checking for the generic conflict class catch it too.
var ErrAlreadyBooked = fmt.Errorf("flow already booked: %w", ErrConflict)

// ErrBookingNotFound is returned when no booking matches a lookup.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepo provides access to finalized bookings.  One row is written
// per (user, flow) at the checkout boundary; the row snapshots the plan
// handed to the payment collaborator so later screens and the receipt
// generator never recompute it.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create inserts a booking and populates the generated ID.  The unique
// (user_id, flow) key makes a double-checkout from a second tab fail
// with ErrAlreadyBooked instead of recording two purchases.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
    const q = `INSERT INTO bookings
        (reference, user_id, flow, tier_id, guest_count, total_cents, deposit_cents,
         plan_strategy, plan_months, per_month_cents, last_payment_cents,
         final_due_at, next_charge_at, payment_ref)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    var finalDue, nextCharge interface{}
    if b.FinalDueAt != nil {
        finalDue = b.FinalDueAt.UTC()
    }
    if b.NextChargeAt != nil {
        nextCharge = b.NextChargeAt.UTC()
    }
    res, err := r.db.ExecContext(ctx, q,
        b.Reference, b.UserID, string(b.Flow), b.TierID, b.GuestCount,
        b.TotalCents, b.DepositCents, b.PlanStrategy, b.PlanMonths,
        b.PerMonthCents, b.LastPaymentCents, finalDue, nextCharge, b.PaymentRef)
    if err != nil {
        // MySQL duplicate-key error code for the unique (user_id, flow) index.
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrAlreadyBooked
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    return nil
}

// ExistsForFlow reports whether the user has a finalized booking for the
// given flow.  Completion screens use this to detect sibling bookings.
func (r *BookingRepo) ExistsForFlow(ctx context.Context, userID uint64, flow model.FlowType) (bool, error) {
    const q = `SELECT 1 FROM bookings WHERE user_id = ? AND flow = ? LIMIT 1`
    var one int
    err := r.db.QueryRowContext(ctx, q, userID, string(flow)).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// ListByUser returns all of the user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
    const q = `SELECT id, reference, user_id, flow, tier_id, guest_count, total_cents,
            deposit_cents, plan_strategy, plan_months, per_month_cents, last_payment_cents,
            final_due_at, next_charge_at, payment_ref, receipt_url, created_at
        FROM bookings WHERE user_id = ? ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Booking
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    return out, rows.Err()
}

// GetByReference fetches a booking by its external reference.
func (r *BookingRepo) GetByReference(ctx context.Context, reference string) (model.Booking, error) {
    const q = `SELECT id, reference, user_id, flow, tier_id, guest_count, total_cents,
            deposit_cents, plan_strategy, plan_months, per_month_cents, last_payment_cents,
            final_due_at, next_charge_at, payment_ref, receipt_url, created_at
        FROM bookings WHERE reference = ? LIMIT 1`
    row := r.db.QueryRowContext(ctx, q, reference)
    b, err := scanBooking(row)
    if err == sql.ErrNoRows {
        return model.Booking{}, ErrBookingNotFound
    }
    if err != nil {
        return model.Booking{}, err
    }
    return b, nil
}

// GetOwnedByReference fetches a booking by reference, enforcing that it
// belongs to the given user.  A booking owned by someone else returns
// ErrForbidden rather than leaking its contents.
func (r *BookingRepo) GetOwnedByReference(ctx context.Context, userID uint64, reference string) (model.Booking, error) {
    b, err := r.GetByReference(ctx, reference)
    if err != nil {
        return model.Booking{}, err
    }
    if b.UserID != userID {
        return model.Booking{}, ErrForbidden
    }
    return b, nil
}

// SetReceiptURL backfills the receipt artifact URL once the document
// generator has produced it.
func (r *BookingRepo) SetReceiptURL(ctx context.Context, id uint64, url string) error {
    const q = `UPDATE bookings SET receipt_url = ? WHERE id = ?`
    _, err := r.db.ExecContext(ctx, q, url, id)
    return err
}

// scanner abstracts *sql.Row and *sql.Rows for scanBooking.
type scanner interface {
    Scan(dest ...interface{}) error
}

func scanBooking(s scanner) (model.Booking, error) {
    var (
        b          model.Booking
        finalDue   sql.NullTime
        nextCharge sql.NullTime
        paymentRef sql.NullString
        receiptURL sql.NullString
        flow       string
    )
    err := s.Scan(&b.ID, &b.Reference, &b.UserID, &flow, &b.TierID, &b.GuestCount,
        &b.TotalCents, &b.DepositCents, &b.PlanStrategy, &b.PlanMonths,
        &b.PerMonthCents, &b.LastPaymentCents, &finalDue, &nextCharge,
        &paymentRef, &receiptURL, &b.CreatedAt)
    if err != nil {
        return model.Booking{}, err
    }
    b.Flow = model.FlowType(flow)
    if finalDue.Valid {
        t := finalDue.Time.UTC()
        b.FinalDueAt = &t
    }
    if nextCharge.Valid {
        t := nextCharge.Time.UTC()
        b.NextChargeAt = &t
    }
    if paymentRef.Valid {
        v := paymentRef.String
        b.PaymentRef = &v
    }
    if receiptURL.Valid {
        v := receiptURL.String
        b.ReceiptURL = &v
    }
    return b, nil
}
