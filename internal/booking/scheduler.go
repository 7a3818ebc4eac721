package booking

import (
    "time"

    "github.com/iliyamo/wedding-booking/internal/model"
)

// PaymentPlanScheduler converts a total and the event date into a
// concrete payment schedule: either pay-in-full, or a deposit today plus
// monthly installments that reach zero by the final due date (a fixed
// offset before the event).  All arithmetic is integer cents; the last
// installment absorbs the rounding remainder so the schedule reconciles
// to the penny.
type PaymentPlanScheduler struct {
    depositBasisPoints int
    finalDueOffsetDays int
    now                func() time.Time
}

// NewPaymentPlanScheduler builds a scheduler.  depositBasisPoints is the
// deposit share of the total (2500 = 25%); finalDueOffsetDays is how
// many days before the event the balance must be paid off.
func NewPaymentPlanScheduler(depositBasisPoints, finalDueOffsetDays int) *PaymentPlanScheduler {
    return &PaymentPlanScheduler{
        depositBasisPoints: depositBasisPoints,
        finalDueOffsetDays: finalDueOffsetDays,
        now:                time.Now,
    }
}

// WithNow overrides the clock, for tests.
func (s *PaymentPlanScheduler) WithNow(now func() time.Time) *PaymentPlanScheduler {
    s.now = now
    return s
}

// Build produces the plan for a total.  With eventDate nil only a
// full-payment plan can be produced; it is marked Provisional, and a
// deposit-plus-monthly request returns ErrEventDateRequired so the UI
// blocks progression past plan selection until the date is confirmed.
func (s *PaymentPlanScheduler) Build(totalCents int64, eventDate *time.Time, payInFull bool) (model.PaymentPlan, error) {
    today := startOfDayUTC(s.now())

    if payInFull {
        plan := model.PaymentPlan{
            Strategy:       model.PlanFullPayment,
            TotalCents:     totalCents,
            DepositCents:   totalCents,
            RemainingCents: 0,
            PlanMonths:     0,
            Provisional:    eventDate == nil,
        }
        if eventDate != nil {
            plan.FinalDueAt = finalDueDate(*eventDate, s.finalDueOffsetDays)
        }
        return plan, nil
    }

    if eventDate == nil {
        return model.PaymentPlan{}, ErrEventDateRequired
    }

    finalDue := finalDueDate(*eventDate, s.finalDueOffsetDays)
    deposit := roundBasisPoints(totalCents, s.depositBasisPoints)
    remaining := totalCents - deposit
    months := monthsBetweenInclusive(today, finalDue)
    perMonth := remaining / int64(months)
    last := remaining - perMonth*int64(months-1)

    return model.PaymentPlan{
        Strategy:         model.PlanDepositPlusMonthly,
        TotalCents:       totalCents,
        DepositCents:     deposit,
        RemainingCents:   remaining,
        PlanMonths:       months,
        PerMonthCents:    perMonth,
        LastPaymentCents: last,
        FinalDueAt:       finalDue,
        NextChargeAt:     addMonthClamped(today, 1),
    }, nil
}

// finalDueDate is the event date minus the offset, at start of day UTC.
func finalDueDate(eventDate time.Time, offsetDays int) time.Time {
    return startOfDayUTC(eventDate.AddDate(0, 0, -offsetDays))
}

// monthsBetweenInclusive counts the billing cycles between today and the
// final due date, inclusive of the first and last cycle: the whole-month
// difference of the (year, month) pairs, plus one more month when the
// due date's day-of-month has not yet passed today's, clamped to a
// minimum of one.  A due date on or before today therefore yields a
// single installment covering the full remaining balance.
func monthsBetweenInclusive(today, finalDue time.Time) int {
    months := (finalDue.Year()-today.Year())*12 + int(finalDue.Month()) - int(today.Month())
    if finalDue.Day() >= today.Day() {
        months++
    }
    if months < 1 {
        months = 1
    }
    return months
}

// addMonthClamped advances t by n calendar months keeping the same
// day-of-month, clamped to the target month's last day (Jan 31 + 1 month
// is Feb 28/29, not Mar 2).
func addMonthClamped(t time.Time, n int) time.Time {
    y, m, d := t.Date()
    m += time.Month(n)
    // Normalize the year/month pair, then clamp the day.
    firstOfMonth := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
    lastDay := firstOfMonth.AddDate(0, 1, -1).Day()
    if d > lastDay {
        d = lastDay
    }
    return time.Date(firstOfMonth.Year(), firstOfMonth.Month(), d, 0, 0, 0, 0, time.UTC)
}

// startOfDayUTC truncates t to midnight UTC.  Schedule dates are always
// carried as absolute UTC instants.
func startOfDayUTC(t time.Time) time.Time {
    u := t.UTC()
    return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
