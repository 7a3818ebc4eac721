package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/wedding-booking/internal/model"
)

// ErrTierNotFound is returned when a tier id does not exist.
var ErrTierNotFound = errors.New("tier not found")

// ErrMenuItemNotFound is returned when a named item does not exist in the
// requested service and section.
var ErrMenuItemNotFound = errors.New("menu item not found")

// TierRepo reads the immutable per-service reference data: tiers with
// their section allowances, menu items and boolean addons.  The content
// itself is authored outside this system; this repository only loads it.
// Tables: `tiers`, `tier_allowances`, `menu_items`, `addons`.
type TierRepo struct {
    db *sql.DB
}

// NewTierRepo returns a TierRepo bound to the given database.
func NewTierRepo(db *sql.DB) *TierRepo { return &TierRepo{db: db} }

// GetTier loads one tier together with its allowances.
func (r *TierRepo) GetTier(ctx context.Context, id uint64) (model.TierDefinition, error) {
    const q = `SELECT id, service, name, price_per_guest_cents, created_at FROM tiers WHERE id = ?`
    var (
        t       model.TierDefinition
        service string
    )
    err := r.db.QueryRowContext(ctx, q, id).
        Scan(&t.ID, &service, &t.Name, &t.PricePerGuestCents, &t.CreatedAt)
    if err == sql.ErrNoRows {
        return model.TierDefinition{}, ErrTierNotFound
    }
    if err != nil {
        return model.TierDefinition{}, err
    }
    t.Service = model.FlowType(service)
    t.Allowances, err = r.allowances(ctx, t.ID)
    if err != nil {
        return model.TierDefinition{}, err
    }
    return t, nil
}

// ListTiersByService returns every tier offered for one service,
// cheapest first, allowances included.
func (r *TierRepo) ListTiersByService(ctx context.Context, service model.FlowType) ([]model.TierDefinition, error) {
    const q = `SELECT id, service, name, price_per_guest_cents, created_at
        FROM tiers WHERE service = ? ORDER BY price_per_guest_cents ASC`
    rows, err := r.db.QueryContext(ctx, q, string(service))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.TierDefinition
    for rows.Next() {
        var (
            t   model.TierDefinition
            svc string
        )
        if err := rows.Scan(&t.ID, &svc, &t.Name, &t.PricePerGuestCents, &t.CreatedAt); err != nil {
            return nil, err
        }
        t.Service = model.FlowType(svc)
        out = append(out, t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    for i := range out {
        if out[i].Allowances, err = r.allowances(ctx, out[i].ID); err != nil {
            return nil, err
        }
    }
    return out, nil
}

func (r *TierRepo) allowances(ctx context.Context, tierID uint64) (map[model.Section]int, error) {
    const q = `SELECT section, max_items FROM tier_allowances WHERE tier_id = ?`
    rows, err := r.db.QueryContext(ctx, q, tierID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    m := make(map[model.Section]int)
    for rows.Next() {
        var (
            section string
            max     int
        )
        if err := rows.Scan(&section, &max); err != nil {
            return nil, err
        }
        m[model.Section(section)] = max
    }
    return m, rows.Err()
}

// ListMenuItems returns every selectable item for a service, grouped in
// section order then display order.
func (r *TierRepo) ListMenuItems(ctx context.Context, service model.FlowType) ([]model.MenuItem, error) {
    const q = `SELECT id, service, section, name, upgrade_fee_per_guest_cents
        FROM menu_items WHERE service = ? ORDER BY section, id`
    rows, err := r.db.QueryContext(ctx, q, string(service))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.MenuItem
    for rows.Next() {
        var (
            it       model.MenuItem
            svc, sec string
        )
        if err := rows.Scan(&it.ID, &svc, &sec, &it.Name, &it.UpgradeFeePerGuestCents); err != nil {
            return nil, err
        }
        it.Service = model.FlowType(svc)
        it.Section = model.Section(sec)
        out = append(out, it)
    }
    return out, rows.Err()
}

// GetMenuItem resolves a named item inside one service section.  The
// selection boundary uses this to validate picks and price upgrades.
func (r *TierRepo) GetMenuItem(ctx context.Context, service model.FlowType, section model.Section, name string) (model.MenuItem, error) {
    const q = `SELECT id, service, section, name, upgrade_fee_per_guest_cents
        FROM menu_items WHERE service = ? AND section = ? AND name = ? LIMIT 1`
    var (
        it       model.MenuItem
        svc, sec string
    )
    err := r.db.QueryRowContext(ctx, q, string(service), string(section), name).
        Scan(&it.ID, &svc, &sec, &it.Name, &it.UpgradeFeePerGuestCents)
    if err == sql.ErrNoRows {
        return model.MenuItem{}, ErrMenuItemNotFound
    }
    if err != nil {
        return model.MenuItem{}, err
    }
    it.Service = model.FlowType(svc)
    it.Section = model.Section(sec)
    return it, nil
}

// ListAddons returns the boolean per-guest addons offered for a service.
func (r *TierRepo) ListAddons(ctx context.Context, service model.FlowType) ([]model.Addon, error) {
    const q = `SELECT id, service, name, fee_per_guest_cents FROM addons WHERE service = ? ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, string(service))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Addon
    for rows.Next() {
        var (
            a   model.Addon
            svc string
        )
        if err := rows.Scan(&a.ID, &svc, &a.Name, &a.FeePerGuestCents); err != nil {
            return nil, err
        }
        a.Service = model.FlowType(svc)
        out = append(out, a)
    }
    return out, rows.Err()
}
