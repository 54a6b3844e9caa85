// Package dashboard defines the dashboards the API serves: each one is a
// named producer that shapes one cached JSON payload, plus the metadata the
// cache layer needs (TTL, whether the key carries a date range).
package dashboard

import (
	"context"
	"time"

	"opsdash-api/internal/period"
	"opsdash-api/internal/query"
)

// Build computes a dashboard payload from the data provider. cur and prev are
// ignored by tenant-scoped dashboards.
type Build func(ctx context.Context, tenant, label string, cur, prev period.Range) (any, error)

// Descriptor is one dashboard's cache contract.
type Descriptor struct {
	Name string
	// TTL overrides the orchestrator default; slow-changing views cache
	// longer, volatile ones shorter.
	TTL time.Duration
	// RangeScoped dashboards embed the resolved dates in their cache key;
	// the rest are keyed on tenant alone.
	RangeScoped bool

	build Build
}

// Produce runs the dashboard's producer. Read-only; an error means nothing
// gets cached.
func (d Descriptor) Produce(ctx context.Context, tenant, label string, cur, prev period.Range) (any, error) {
	return d.build(ctx, tenant, label, cur, prev)
}

// Registry holds every known dashboard.
type Registry struct {
	provider query.Provider
	byName   map[string]Descriptor
}

func NewRegistry(provider query.Provider) *Registry {
	r := &Registry{
		provider: provider,
		byName:   make(map[string]Descriptor),
	}

	r.add(Descriptor{Name: "executive", TTL: 2 * time.Minute, RangeScoped: true, build: r.executive})
	r.add(Descriptor{Name: "sales", TTL: 2 * time.Minute, RangeScoped: true, build: r.sales})
	r.add(Descriptor{Name: "logistics", TTL: 2 * time.Minute, RangeScoped: true, build: r.logistics})
	r.add(Descriptor{Name: "inventory", TTL: 3 * time.Minute, build: r.inventory})
	r.add(Descriptor{Name: "alerts", TTL: time.Minute, build: r.alerts})

	return r
}

func (r *Registry) add(d Descriptor) {
	r.byName[d.Name] = d
}

// Lookup returns the descriptor for name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// PeriodBlock echoes the resolved dates back in every range-scoped payload so
// clients can render the comparison window without redoing the arithmetic.
type PeriodBlock struct {
	Label        string `json:"label"`
	FromDate     string `json:"from_date"`
	ToDate       string `json:"to_date"`
	PrevFromDate string `json:"prev_from_date"`
	PrevToDate   string `json:"prev_to_date"`
}

func newPeriodBlock(label string, cur, prev period.Range) PeriodBlock {
	return PeriodBlock{
		Label:        label,
		FromDate:     cur.FromString(),
		ToDate:       cur.ToString(),
		PrevFromDate: prev.FromString(),
		PrevToDate:   prev.ToString(),
	}
}
