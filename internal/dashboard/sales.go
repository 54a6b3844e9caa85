package dashboard

import (
	"context"

	"opsdash-api/internal/period"
	"opsdash-api/internal/query"
)

type SalesPayload struct {
	KPIs                query.SalesKPIs        `json:"kpis"`
	PreviousKPIs        query.SalesKPIs        `json:"previous_kpis"`
	RevenueTrend        []query.TrendPoint     `json:"revenue_trend"`
	StatusDistribution  []query.StatusCount    `json:"status_distribution"`
	CancellationReasons []query.ReasonCount    `json:"cancellation_reasons"`
	Customers           query.CustomerInsights `json:"customers"`
	Period              PeriodBlock            `json:"period"`
	Tenant              string                 `json:"tenant"`
}

func (r *Registry) sales(ctx context.Context, tenant, label string, cur, prev period.Range) (any, error) {
	kpis, err := r.provider.SalesKPIs(ctx, tenant, cur)
	if err != nil {
		return nil, err
	}
	prevKPIs, err := r.provider.SalesKPIs(ctx, tenant, prev)
	if err != nil {
		return nil, err
	}
	trend, err := r.provider.RevenueTrend(ctx, tenant, cur)
	if err != nil {
		return nil, err
	}
	statuses, err := r.provider.StatusDistribution(ctx, tenant, cur)
	if err != nil {
		return nil, err
	}
	reasons, err := r.provider.CancellationReasons(ctx, tenant, cur, 10)
	if err != nil {
		return nil, err
	}
	customers, err := r.provider.CustomerInsights(ctx, tenant, cur)
	if err != nil {
		return nil, err
	}

	return SalesPayload{
		KPIs:                kpis,
		PreviousKPIs:        prevKPIs,
		RevenueTrend:        trend,
		StatusDistribution:  statuses,
		CancellationReasons: reasons,
		Customers:           customers,
		Period:              newPeriodBlock(label, cur, prev),
		Tenant:              tenant,
	}, nil
}
