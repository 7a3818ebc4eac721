package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/wedding-booking/internal/model"
    "github.com/iliyamo/wedding-booking/internal/repository"
)

// CatalogHandler serves the public, read-only reference data: tiers,
// menu items and addons per service.  These routes sit behind the
// response cache and rate limiter, not behind auth.
type CatalogHandler struct {
    Tiers *repository.TierRepo
}

func NewCatalogHandler(t *repository.TierRepo) *CatalogHandler {
    return &CatalogHandler{Tiers: t}
}

type tierResp struct {
    ID                 uint64         `json:"id"`
    Name               string         `json:"name"`
    PricePerGuestCents int64          `json:"price_per_guest_cents"`
    Allowances         map[string]int `json:"allowances"`
}

type menuItemResp struct {
    ID                      uint64 `json:"id"`
    Section                 string `json:"section"`
    Name                    string `json:"name"`
    UpgradeFeePerGuestCents int64  `json:"upgrade_fee_per_guest_cents"`
}

type addonResp struct {
    ID               uint64 `json:"id"`
    Name             string `json:"name"`
    FeePerGuestCents int64  `json:"fee_per_guest_cents"`
}

func (h *CatalogHandler) serviceParam(c echo.Context) (model.FlowType, bool) {
    f := model.FlowType(c.Param("service"))
    return f, model.ValidFlow(f)
}

// ListTiers returns a service's tiers, cheapest first.
func (h *CatalogHandler) ListTiers(c echo.Context) error {
    service, ok := h.serviceParam(c)
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown service"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    tiers, err := h.Tiers.ListTiersByService(ctx, service)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load tiers failed"})
    }
    out := make([]tierResp, 0, len(tiers))
    for _, t := range tiers {
        tr := tierResp{
            ID:                 t.ID,
            Name:               t.Name,
            PricePerGuestCents: t.PricePerGuestCents,
            Allowances:         map[string]int{},
        }
        for sec, max := range t.Allowances {
            tr.Allowances[string(sec)] = max
        }
        out = append(out, tr)
    }
    return c.JSON(http.StatusOK, echo.Map{"service": string(service), "tiers": out})
}

// ListMenu returns a service's selectable items in section order.
func (h *CatalogHandler) ListMenu(c echo.Context) error {
    service, ok := h.serviceParam(c)
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown service"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    items, err := h.Tiers.ListMenuItems(ctx, service)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load menu failed"})
    }
    out := make([]menuItemResp, 0, len(items))
    for _, it := range items {
        out = append(out, menuItemResp{
            ID:                      it.ID,
            Section:                 string(it.Section),
            Name:                    it.Name,
            UpgradeFeePerGuestCents: it.UpgradeFeePerGuestCents,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"service": string(service), "items": out})
}

// ListAddons returns a service's boolean per-guest addons.
func (h *CatalogHandler) ListAddons(c echo.Context) error {
    service, ok := h.serviceParam(c)
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown service"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    addons, err := h.Tiers.ListAddons(ctx, service)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load addons failed"})
    }
    out := make([]addonResp, 0, len(addons))
    for _, a := range addons {
        out = append(out, addonResp{ID: a.ID, Name: a.Name, FeePerGuestCents: a.FeePerGuestCents})
    }
    return c.JSON(http.StatusOK, echo.Map{"service": string(service), "addons": out})
}
