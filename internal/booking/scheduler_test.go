package booking

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/wedding-booking/internal/model"
)

func fixedClock(t time.Time) func() time.Time {
    return func() time.Time { return t }
}

func date(y int, m time.Month, d int) time.Time {
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildDepositPlusMonthly(t *testing.T) {
    // $1,000 total, 25% deposit, event in 100 days, balance due 35 days
    // before the event.
    today := date(2026, time.August, 28)
    s := NewPaymentPlanScheduler(2500, 35).WithNow(fixedClock(today))

    eventDate := today.AddDate(0, 0, 100) // 2026-12-06
    plan, err := s.Build(100_000, &eventDate, false)
    require.NoError(t, err)

    assert.Equal(t, model.PlanDepositPlusMonthly, plan.Strategy)
    assert.Equal(t, int64(25_000), plan.DepositCents)
    assert.Equal(t, int64(75_000), plan.RemainingCents)
    assert.Equal(t, date(2026, time.November, 1), plan.FinalDueAt)
    assert.Equal(t, 3, plan.PlanMonths)
    assert.Equal(t, int64(25_000), plan.PerMonthCents)
    assert.Equal(t, int64(25_000), plan.LastPaymentCents)
    assert.Equal(t, date(2026, time.September, 28), plan.NextChargeAt)
    assert.False(t, plan.Provisional)
    assert.Equal(t, int64(25_000), plan.AmountDueTodayCents())
}

func TestBuildLastInstallmentAbsorbsRemainder(t *testing.T) {
    today := date(2026, time.August, 28)
    s := NewPaymentPlanScheduler(2500, 35).WithNow(fixedClock(today))

    eventDate := today.AddDate(0, 0, 100)
    plan, err := s.Build(100_001, &eventDate, false)
    require.NoError(t, err)

    // deposit rounds half-up: 25000.25 -> 25000
    assert.Equal(t, int64(25_000), plan.DepositCents)
    assert.Equal(t, int64(75_001), plan.RemainingCents)
    assert.Equal(t, 3, plan.PlanMonths)
    assert.Equal(t, int64(25_000), plan.PerMonthCents)
    assert.Equal(t, int64(25_001), plan.LastPaymentCents)

    // The schedule reconciles to the penny.
    sum := plan.DepositCents + plan.PerMonthCents*int64(plan.PlanMonths-1) + plan.LastPaymentCents
    assert.Equal(t, plan.TotalCents, sum)
}

func TestBuildFullPayment(t *testing.T) {
    today := date(2026, time.August, 28)
    s := NewPaymentPlanScheduler(2500, 35).WithNow(fixedClock(today))

    eventDate := date(2026, time.December, 6)
    plan, err := s.Build(50_000, &eventDate, true)
    require.NoError(t, err)

    assert.Equal(t, model.PlanFullPayment, plan.Strategy)
    assert.Equal(t, int64(50_000), plan.DepositCents)
    assert.Zero(t, plan.RemainingCents)
    assert.Zero(t, plan.PlanMonths)
    assert.False(t, plan.Provisional)
    assert.Equal(t, int64(50_000), plan.AmountDueTodayCents())
}

func TestBuildFullPaymentWithoutDateIsProvisional(t *testing.T) {
    s := NewPaymentPlanScheduler(2500, 35).WithNow(fixedClock(date(2026, time.August, 28)))

    plan, err := s.Build(50_000, nil, true)
    require.NoError(t, err)
    assert.True(t, plan.Provisional)
    assert.True(t, plan.FinalDueAt.IsZero())
}

func TestBuildInstallmentsWithoutDateFails(t *testing.T) {
    s := NewPaymentPlanScheduler(2500, 35).WithNow(fixedClock(date(2026, time.August, 28)))

    _, err := s.Build(50_000, nil, false)
    assert.ErrorIs(t, err, ErrEventDateRequired)
}

func TestBuildImminentEventSingleInstallment(t *testing.T) {
    // Final due date already behind today: the whole remainder is due in
    // one installment rather than zero or a negative count.
    today := date(2026, time.August, 28)
    s := NewPaymentPlanScheduler(2500, 35).WithNow(fixedClock(today))

    eventDate := today.AddDate(0, 0, 10)
    plan, err := s.Build(100_000, &eventDate, false)
    require.NoError(t, err)

    assert.Equal(t, 1, plan.PlanMonths)
    assert.Equal(t, plan.RemainingCents, plan.LastPaymentCents)
}

func TestMonthsBetweenInclusiveCountsPartialMonths(t *testing.T) {
    cases := []struct {
        name     string
        today    time.Time
        finalDue time.Time
        want     int
    }{
        {"same day", date(2026, time.August, 28), date(2026, time.August, 28), 1},
        {"due before today's day-of-month", date(2026, time.August, 28), date(2026, time.November, 1), 3},
        {"due on today's day-of-month", date(2026, time.August, 28), date(2026, time.November, 28), 4},
        {"due in the past", date(2026, time.August, 28), date(2026, time.July, 1), 1},
        {"across year boundary", date(2026, time.November, 15), date(2027, time.February, 20), 4},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, monthsBetweenInclusive(tc.today, tc.finalDue))
        })
    }
}

func TestAddMonthClampedEndOfMonth(t *testing.T) {
    assert.Equal(t, date(2026, time.February, 28), addMonthClamped(date(2026, time.January, 31), 1))
    assert.Equal(t, date(2028, time.February, 29), addMonthClamped(date(2028, time.January, 31), 1))
    assert.Equal(t, date(2026, time.March, 15), addMonthClamped(date(2026, time.February, 15), 1))
    assert.Equal(t, date(2027, time.January, 31), addMonthClamped(date(2026, time.December, 31), 1))
}
