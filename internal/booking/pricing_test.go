package booking

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/wedding-booking/internal/model"
)

func testTier() *model.TierDefinition {
    return &model.TierDefinition{
        ID:                 1,
        Service:            model.FlowCatering,
        Name:               "Classic",
        PricePerGuestCents: 8_500,
        Allowances: map[model.Section]int{
            "appetizers": 3,
            "entrees":    2,
        },
    }
}

func testMenu() []model.MenuItem {
    return []model.MenuItem{
        {ID: 1, Service: model.FlowCatering, Section: "appetizers", Name: "bruschetta"},
        {ID: 2, Service: model.FlowCatering, Section: "appetizers", Name: "oysters", UpgradeFeePerGuestCents: 400},
        {ID: 3, Service: model.FlowCatering, Section: "entrees", Name: "chicken"},
        {ID: 4, Service: model.FlowCatering, Section: "entrees", Name: "filet", UpgradeFeePerGuestCents: 1_200},
    }
}

func TestSubtotalPerGuestPricing(t *testing.T) {
    e := NewPricingEngine(RateConfig{})
    sel := model.Selection{
        "appetizers": {"bruschetta", "oysters"},
        "entrees":    {"filet"},
    }
    addons := []model.Addon{{ID: 7, FeePerGuestCents: 300}}

    // per guest: 8500 base + 400 + 1200 upgrades + 300 addon = 10400
    got := e.Subtotal(testTier(), 120, sel, testMenu(), addons)
    assert.Equal(t, int64(120*10_400), got)
}

func TestSubtotalZeroGuests(t *testing.T) {
    e := NewPricingEngine(RateConfig{})
    assert.Zero(t, e.Subtotal(testTier(), 0, model.Selection{}, testMenu(), nil))
    assert.Zero(t, e.Subtotal(nil, 100, model.Selection{}, testMenu(), nil))
}

func TestTotalsRoundPerComponent(t *testing.T) {
    e := NewPricingEngine(RateConfig{
        TaxBasisPoints:         825, // 8.25%
        ProcessingBasisPoints:  290, // 2.9%
        ProcessingFlatFeeCents: 30,
    })

    q := e.TotalsFrom(99_999)
    // 99999 * 825 / 10000 = 8249.9175 -> 8250 (half-up)
    assert.Equal(t, int64(8_250), q.TaxCents)
    // 99999 * 290 / 10000 = 2899.971 -> 2900
    assert.Equal(t, int64(2_900), q.ProcessingCents)
    assert.Equal(t, int64(30), q.ProcessingFlatCents)
    assert.Equal(t, int64(99_999+8_250+2_900+30), q.TotalCents)
}

func TestRoundBasisPointsHalfUp(t *testing.T) {
    assert.Equal(t, int64(25_000), roundBasisPoints(100_001, 2500)) // 25000.25 down
    assert.Equal(t, int64(25_001), roundBasisPoints(100_002, 2500)) // 25000.5 up
    assert.Equal(t, int64(0), roundBasisPoints(0, 2500))
}

func TestAddSelectionEnforcesAllowance(t *testing.T) {
    e := NewPricingEngine(RateConfig{})
    tier := testTier()
    sel := model.Selection{}
    menu := testMenu()

    require.NoError(t, e.AddSelection(sel, tier, menu[2])) // chicken
    require.NoError(t, e.AddSelection(sel, tier, menu[3])) // filet

    // Third entree exceeds the allowance of 2.
    err := e.AddSelection(sel, tier, model.MenuItem{Section: "entrees", Name: "salmon"})
    require.Error(t, err)
    assert.True(t, IsValidation(err))
    assert.Equal(t, 2, sel.CountIn("entrees"))
}

func TestAddSelectionDuplicateIsNoop(t *testing.T) {
    e := NewPricingEngine(RateConfig{})
    tier := testTier()
    sel := model.Selection{}
    item := testMenu()[0]

    require.NoError(t, e.AddSelection(sel, tier, item))
    require.NoError(t, e.AddSelection(sel, tier, item))
    assert.Equal(t, 1, sel.CountIn("appetizers"))
}

func TestAddSelectionRequiresTier(t *testing.T) {
    e := NewPricingEngine(RateConfig{})
    err := e.AddSelection(model.Selection{}, nil, testMenu()[0])
    assert.ErrorIs(t, err, ErrTierRequired)
}

func TestChangeTierTruncatesKeepingEarliestPicks(t *testing.T) {
    e := NewPricingEngine(RateConfig{})
    sel := model.Selection{
        "appetizers": {"bruschetta", "oysters", "caprese"},
        "entrees":    {"chicken", "filet"},
    }
    smaller := &model.TierDefinition{
        Allowances: map[model.Section]int{
            "appetizers": 1,
            "entrees":    2,
        },
    }

    changed := e.ChangeTier(sel, smaller)
    assert.True(t, changed)
    assert.Equal(t, []string{"bruschetta"}, sel["appetizers"])
    assert.Equal(t, []string{"chicken", "filet"}, sel["entrees"])

    // Re-normalizing against the same tier is a no-op.
    assert.False(t, e.ChangeTier(sel, smaller))
}

func TestChangeTierDropsUnknownSections(t *testing.T) {
    e := NewPricingEngine(RateConfig{})
    sel := model.Selection{"cakes": {"tiered classic"}}
    tier := &model.TierDefinition{Allowances: map[model.Section]int{"entrees": 2}}

    assert.True(t, e.ChangeTier(sel, tier))
    _, ok := sel["cakes"]
    assert.False(t, ok)
}
