package model

import "time"

// Section names a menu category within a service, e.g. "appetizers",
// "entrees", "cakes".  Tier allowances are keyed by section.
type Section string

// TierDefinition is a pricing package for one wedding service.  It
// carries a fixed per-guest price and a quota of selectable menu items
// per section.  Tiers are immutable reference data per venue/service.
//
// Fields:
//  ID                 – primary key identifier.
//  Service            – owning service flow (catering, desserts, ...).
//  Name               – display name of the package.
//  PricePerGuestCents – base price per guest in cents.
//  Allowances         – max selectable items per section.
//  CreatedAt          – creation timestamp.
type TierDefinition struct {
    ID                 uint64          // tiers.id
    Service            FlowType        // tiers.service
    Name               string          // tiers.name
    PricePerGuestCents int64           // tiers.price_per_guest_cents
    Allowances         map[Section]int // tier_allowances rows
    CreatedAt          time.Time       // tiers.created_at
}

// AllowanceFor returns the selection quota for a section.  Sections the
// tier does not mention have a quota of zero.
func (t *TierDefinition) AllowanceFor(s Section) int {
    return t.Allowances[s]
}

// MenuItem is a selectable dish or product within a section.  Premium
// items carry a per-guest upgrade fee on top of the tier's base price.
type MenuItem struct {
    ID                      uint64   // menu_items.id
    Service                 FlowType // menu_items.service
    Section                 Section  // menu_items.section
    Name                    string   // menu_items.name
    UpgradeFeePerGuestCents int64    // menu_items.upgrade_fee_per_guest_cents (0 for included items)
}

// Addon is a flat per-guest extra that can be toggled on independently of
// the menu, e.g. a late-night snack station or a champagne toast.
type Addon struct {
    ID               uint64   // addons.id
    Service          FlowType // addons.service
    Name             string   // addons.name
    FeePerGuestCents int64    // addons.fee_per_guest_cents
}
