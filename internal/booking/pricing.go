package booking

import (
    "strconv"

    "github.com/iliyamo/wedding-booking/internal/model"
)

// RateConfig carries the tax and processing rates applied on top of a
// subtotal.  Rates are basis points (25 bps = 0.25%) so every
// computation stays in exact integer arithmetic; nothing is ever carried
// as a binary floating fraction.
type RateConfig struct {
    TaxBasisPoints         int
    ProcessingBasisPoints  int
    ProcessingFlatFeeCents int64
}

// Quote is the priced cart shown before checkout.  All values are cents.
type Quote struct {
    SubtotalCents       int64 `json:"subtotal_cents"`
    TaxCents            int64 `json:"tax_cents"`
    ProcessingCents     int64 `json:"processing_cents"`
    ProcessingFlatCents int64 `json:"processing_flat_cents"`
    TotalCents          int64 `json:"total_cents"`
}

// PricingEngine converts a tier, the guest count and the current
// selections into a subtotal and total, and guards the per-tier
// selection allowances at the selection boundary.
type PricingEngine struct {
    rates RateConfig
}

// NewPricingEngine returns an engine with the given rates.
func NewPricingEngine(rates RateConfig) *PricingEngine {
    return &PricingEngine{rates: rates}
}

// Subtotal prices the cart before taxes and fees:
// guests * (tier base + selected upgrade fees + enabled addon fees).
// The menu slice supplies the upgrade fee for each selected item name;
// selections naming unknown items contribute nothing rather than
// failing, since the selection boundary already rejected them.
func (e *PricingEngine) Subtotal(tier *model.TierDefinition, guests int, sel model.Selection, menu []model.MenuItem, addons []model.Addon) int64 {
    if tier == nil || guests <= 0 {
        return 0
    }
    fees := make(map[model.Section]map[string]int64, len(menu))
    for _, it := range menu {
        if fees[it.Section] == nil {
            fees[it.Section] = make(map[string]int64)
        }
        fees[it.Section][it.Name] = it.UpgradeFeePerGuestCents
    }
    perGuest := tier.PricePerGuestCents
    for sec, names := range sel {
        for _, name := range names {
            perGuest += fees[sec][name]
        }
    }
    for _, a := range addons {
        perGuest += a.FeePerGuestCents
    }
    return int64(guests) * perGuest
}

// TotalsFrom applies taxes and fees to a subtotal.  Each component is
// rounded to the cent independently before summing, matching how the
// amounts appear line by line on the receipt.
func (e *PricingEngine) TotalsFrom(subtotal int64) Quote {
    q := Quote{
        SubtotalCents:       subtotal,
        TaxCents:            roundBasisPoints(subtotal, e.rates.TaxBasisPoints),
        ProcessingCents:     roundBasisPoints(subtotal, e.rates.ProcessingBasisPoints),
        ProcessingFlatCents: e.rates.ProcessingFlatFeeCents,
    }
    q.TotalCents = q.SubtotalCents + q.TaxCents + q.ProcessingCents + q.ProcessingFlatCents
    return q
}

// Price is Subtotal followed by TotalsFrom.
func (e *PricingEngine) Price(tier *model.TierDefinition, guests int, sel model.Selection, menu []model.MenuItem, addons []model.Addon) Quote {
    return e.TotalsFrom(e.Subtotal(tier, guests, sel, menu, addons))
}

// AddSelection appends an item to the cart, rejecting the pick at the
// boundary when the section's allowance is exhausted.  Re-picking an
// already selected item is a no-op.
func (e *PricingEngine) AddSelection(sel model.Selection, tier *model.TierDefinition, item model.MenuItem) error {
    if tier == nil {
        return ErrTierRequired
    }
    if sel.Contains(item.Section, item.Name) {
        return nil
    }
    max := tier.AllowanceFor(item.Section)
    if sel.CountIn(item.Section) >= max {
        return &ValidationError{
            Field:  string(item.Section),
            Reason: "tier allows at most " + strconv.Itoa(max) + " selections in this section",
        }
    }
    sel[item.Section] = append(sel[item.Section], item.Name)
    return nil
}

// ChangeTier normalizes the selections to a new tier's allowances before
// any further pricing: each section keeps its earliest picks up to the
// new quota.  It reports whether anything was cut so the caller can
// notify dependent screens.
func (e *PricingEngine) ChangeTier(sel model.Selection, newTier *model.TierDefinition) bool {
    return sel.NormalizeToTier(newTier)
}

// roundBasisPoints computes amount*bp/10000 rounded half-up to the cent.
// Inputs are non-negative in practice.
func roundBasisPoints(amount int64, bp int) int64 {
    return (amount*int64(bp) + 5000) / 10000
}
