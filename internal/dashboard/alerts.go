package dashboard

import (
	"context"

	"opsdash-api/internal/period"
	"opsdash-api/internal/query"
)

type AlertsPayload struct {
	Alerts []query.Alert `json:"alerts"`
	Count  int           `json:"count"`
	Tenant string        `json:"tenant"`
}

// alerts carries the shortest TTL in the registry; a stale alert list is
// worse than a stale chart.
func (r *Registry) alerts(ctx context.Context, tenant, _ string, _, _ period.Range) (any, error) {
	alerts, err := r.provider.RestockAlerts(ctx, tenant)
	if err != nil {
		return nil, err
	}

	return AlertsPayload{
		Alerts: alerts,
		Count:  len(alerts),
		Tenant: tenant,
	}, nil
}
