package dashboard

import (
	"context"

	"opsdash-api/internal/period"
	"opsdash-api/internal/query"
)

type LogisticsPayload struct {
	Pipeline []query.PipelineCount `json:"pipeline"`
	Tracking []query.PipelineCount `json:"tracking"`
	Funnel   []query.FunnelStage   `json:"funnel"`
	Period   PeriodBlock           `json:"period"`
	Tenant   string                `json:"tenant"`
}

func (r *Registry) logistics(ctx context.Context, tenant, label string, cur, prev period.Range) (any, error) {
	pipeline, err := r.provider.LogisticsPipeline(ctx, tenant, cur)
	if err != nil {
		return nil, err
	}
	tracking, err := r.provider.ShipmentTracking(ctx, tenant, cur)
	if err != nil {
		return nil, err
	}
	funnel, err := r.provider.OperationsFunnel(ctx, tenant, cur)
	if err != nil {
		return nil, err
	}

	return LogisticsPayload{
		Pipeline: pipeline,
		Tracking: tracking,
		Funnel:   funnel,
		Period:   newPeriodBlock(label, cur, prev),
		Tenant:   tenant,
	}, nil
}
