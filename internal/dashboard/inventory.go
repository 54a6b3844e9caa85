package dashboard

import (
	"context"

	"opsdash-api/internal/period"
	"opsdash-api/internal/query"
)

type InventoryPayload struct {
	Summary  query.StockSummary `json:"summary"`
	TopItems []query.StockItem  `json:"top_items"`
	Restock  []query.Alert      `json:"restock_alerts"`
	Tenant   string             `json:"tenant"`
}

// inventory is tenant-scoped: stock levels are a point-in-time snapshot, so
// no date range participates in the key.
func (r *Registry) inventory(ctx context.Context, tenant, _ string, _, _ period.Range) (any, error) {
	summary, err := r.provider.StockSummary(ctx, tenant)
	if err != nil {
		return nil, err
	}
	topItems, err := r.provider.TopStockItems(ctx, tenant, 20)
	if err != nil {
		return nil, err
	}
	restock, err := r.provider.RestockAlerts(ctx, tenant)
	if err != nil {
		return nil, err
	}

	return InventoryPayload{
		Summary:  summary,
		TopItems: topItems,
		Restock:  restock,
		Tenant:   tenant,
	}, nil
}
