// Package prewarm keeps the hot dashboard cached for known tenants so
// user-facing requests land on cache hits instead of paying for the
// aggregation queries themselves.
package prewarm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"opsdash-api/internal/cache"
	"opsdash-api/internal/dashboard"
	"opsdash-api/internal/metrics"
	"opsdash-api/internal/period"
)

// Warmer forces one dashboard through the orchestrator for every configured
// tenant. Running it twice inside a TTL window is safe: the second pass is
// all cache hits.
type Warmer struct {
	Tenants   []string
	Dashboard string // warmed dashboard, normally "executive"

	Orchestrator *cache.Orchestrator
	Registry     *dashboard.Registry
	Location     *time.Location
	Logger       *zap.Logger

	// Now is swappable for tests.
	Now func() time.Time
}

func New(tenants []string, orch *cache.Orchestrator, reg *dashboard.Registry, loc *time.Location, logger *zap.Logger) *Warmer {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Warmer{
		Tenants:      tenants,
		Dashboard:    "executive",
		Orchestrator: orch,
		Registry:     reg,
		Location:     loc,
		Logger:       logger,
		Now:          time.Now,
	}
}

// Run warms the dashboard for every tenant. A failing tenant is logged and
// counted but never stops the remaining iterations.
func (w *Warmer) Run(ctx context.Context) {
	desc, ok := w.Registry.Lookup(w.Dashboard)
	if !ok {
		w.Logger.Error("prewarm_unknown_dashboard", zap.String("dashboard", w.Dashboard))
		return
	}

	today := w.Now().In(w.Location)
	cur := period.Resolve("today", today)
	prev := period.Previous(cur)

	for _, tenant := range w.Tenants {
		if err := w.warmTenant(ctx, desc, tenant, cur, prev); err != nil {
			metrics.PrewarmFailuresTotal.WithLabelValues(tenant).Inc()
			w.Logger.Warn("prewarm_tenant_failed",
				zap.String("tenant", tenant),
				zap.String("dashboard", w.Dashboard),
				zap.Error(err),
			)
		}
	}
}

func (w *Warmer) warmTenant(ctx context.Context, desc dashboard.Descriptor, tenant string, cur, prev period.Range) (err error) {
	// A panicking producer must stay contained to its own iteration.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	key := cache.Key{Dashboard: desc.Name, Tenant: tenant}
	if desc.RangeScoped {
		key.From = cur.FromString()
		key.To = cur.ToString()
	}

	_, err = w.Orchestrator.GetOrCompute(ctx, key.String(), desc.TTL, func(ctx context.Context) (any, error) {
		return desc.Produce(ctx, tenant, "today", cur, prev)
	})
	return err
}

// Start runs Run on a fixed cadence until ctx is done. The first pass fires
// immediately so a fresh deploy does not wait a full interval with a cold
// cache.
func (w *Warmer) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 2 * time.Minute
	}

	w.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Run(ctx)
		case <-ctx.Done():
			return
		}
	}
}
