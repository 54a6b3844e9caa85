package dashboard

import (
	"context"

	"opsdash-api/internal/period"
	"opsdash-api/internal/query"
)

// ExecutivePayload is the single response that replaces the dozen-plus small
// queries the executive view used to make.
type ExecutivePayload struct {
	KPIs               query.SalesKPIs       `json:"kpis"`
	PreviousKPIs       query.SalesKPIs       `json:"previous_kpis"`
	RevenueTrend       []query.TrendPoint    `json:"revenue_trend"`
	StatusDistribution []query.StatusCount   `json:"status_distribution"`
	LogisticsPipeline  []query.PipelineCount `json:"logistics_pipeline"`
	TopProducts        []query.ProductSales  `json:"top_products"`
	TopSuppliers       []query.SupplierSales `json:"top_suppliers"`
	Funnel             []query.FunnelStage   `json:"funnel"`
	Period             PeriodBlock           `json:"period"`
	Tenant             string                `json:"tenant"`
}

func (r *Registry) executive(ctx context.Context, tenant, label string, cur, prev period.Range) (any, error) {
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
	pipeline, err := r.provider.LogisticsPipeline(ctx, tenant, cur)
	if err != nil {
		return nil, err
	}
	products, err := r.provider.TopProducts(ctx, tenant, cur, 5)
	if err != nil {
		return nil, err
	}
	suppliers, err := r.provider.TopSuppliers(ctx, tenant, cur, 5)
	if err != nil {
		return nil, err
	}
	funnel, err := r.provider.OperationsFunnel(ctx, tenant, cur)
	if err != nil {
		return nil, err
	}

	return ExecutivePayload{
		KPIs:               kpis,
		PreviousKPIs:       prevKPIs,
		RevenueTrend:       trend,
		StatusDistribution: statuses,
		LogisticsPipeline:  pipeline,
		TopProducts:        products,
		TopSuppliers:       suppliers,
		Funnel:             funnel,
		Period:             newPeriodBlock(label, cur, prev),
		Tenant:             tenant,
	}, nil
}
