package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"opsdash-api/internal/cache"
	"opsdash-api/internal/dashboard"
	"opsdash-api/internal/period"
	"opsdash-api/internal/query"
)

// stubProvider returns canned aggregates and counts KPI invocations so tests
// can tell a cache hit from a recompute.
type stubProvider struct {
	kpiCalls int32
}

func (p *stubProvider) SalesKPIs(_ context.Context, tenant string, _ period.Range) (query.SalesKPIs, error) {
	atomic.AddInt32(&p.kpiCalls, 1)
	return query.SalesKPIs{TotalOrders: 10, GMV: 2500, Confirmed: 7, ConfirmationRate: 70}, nil
}

func (p *stubProvider) RevenueTrend(context.Context, string, period.Range) ([]query.TrendPoint, error) {
	return []query.TrendPoint{{Date: "2024-03-15", GMV: 2500, Orders: 10, Confirmed: 7}}, nil
}

func (p *stubProvider) StatusDistribution(context.Context, string, period.Range) ([]query.StatusCount, error) {
	return []query.StatusCount{{Status: "Confirmed", Count: 7, GMV: 2000}}, nil
}

func (p *stubProvider) LogisticsPipeline(context.Context, string, period.Range) ([]query.PipelineCount, error) {
	return []query.PipelineCount{{Status: "Shipped", Count: 4}}, nil
}

func (p *stubProvider) ShipmentTracking(context.Context, string, period.Range) ([]query.PipelineCount, error) {
	return []query.PipelineCount{{Status: "Delivered", Count: 3}}, nil
}

func (p *stubProvider) CancellationReasons(context.Context, string, period.Range, int) ([]query.ReasonCount, error) {
	return []query.ReasonCount{{Reason: "No answer", Count: 2}}, nil
}

func (p *stubProvider) TopProducts(context.Context, string, period.Range, int) ([]query.ProductSales, error) {
	return []query.ProductSales{{ItemCode: "SKU-1", ItemName: "Widget", Qty: 5, Revenue: 500}}, nil
}

func (p *stubProvider) TopSuppliers(context.Context, string, period.Range, int) ([]query.SupplierSales, error) {
	return []query.SupplierSales{{Supplier: "Acme Supply", Qty: 5, Revenue: 500, Orders: 3}}, nil
}

func (p *stubProvider) CustomerInsights(context.Context, string, period.Range) (query.CustomerInsights, error) {
	return query.CustomerInsights{UniqueCustomers: 8, TotalOrders: 10}, nil
}

func (p *stubProvider) OperationsFunnel(context.Context, string, period.Range) ([]query.FunnelStage, error) {
	return []query.FunnelStage{{Stage: "Confirmed", Count: 7, Color: "#3b82f6"}}, nil
}

func (p *stubProvider) StockSummary(context.Context, string) (query.StockSummary, error) {
	return query.StockSummary{TotalItems: 20, TotalStock: 300, TotalValue: 9000, LowStock: 2}, nil
}

func (p *stubProvider) TopStockItems(context.Context, string, int) ([]query.StockItem, error) {
	return []query.StockItem{{ItemCode: "SKU-1", ItemName: "Widget", Qty: 50, Value: 1500, Warehouse: "Main"}}, nil
}

func (p *stubProvider) RestockAlerts(context.Context, string) ([]query.Alert, error) {
	return []query.Alert{{Type: "warning", Category: "Inventory", Title: "Low Stock: Widget", Priority: "medium"}}, nil
}

func newTestDashboardSetup(t *testing.T) (*stubProvider, *cache.MemoryStore, http.Handler) {
	t.Helper()

	provider := &stubProvider{}
	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(func() { store.Close() })

	h := NewDashboardHandler(dashboard.NewRegistry(provider), cache.NewOrchestrator(store), time.UTC)
	h.Now = func() time.Time {
		return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	}

	r := chi.NewRouter()
	r.Get("/v1/dashboards/{name}", h.Get)
	return provider, store, r
}

func TestDashboardHandlerServesAndCaches(t *testing.T) {
	provider, store, router := newTestDashboardSetup(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboards/executive?tenant=acme&period=month", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var payload dashboard.ExecutivePayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.KPIs.TotalOrders != 10 {
		t.Fatalf("unexpected kpis: %+v", payload.KPIs)
	}
	if payload.Period.FromDate != "2024-03-01" || payload.Period.ToDate != "2024-03-15" {
		t.Fatalf("unexpected period block: %+v", payload.Period)
	}
	if payload.Period.PrevFromDate != "2024-02-15" || payload.Period.PrevToDate != "2024-02-29" {
		t.Fatalf("unexpected previous period: %+v", payload.Period)
	}

	// current + previous period KPI queries
	if calls := atomic.LoadInt32(&provider.kpiCalls); calls != 2 {
		t.Fatalf("expected 2 KPI queries on the miss, got %d", calls)
	}

	key := "dashboard:executive:acme:2024-03-01:2024-03-15"
	if _, hit, _ := store.Get(context.Background(), key); !hit {
		t.Fatalf("expected payload cached under %q", key)
	}

	// Second identical request is a hit: no further provider calls.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/dashboards/executive?tenant=acme&period=month", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 on hit, got %d", rr.Code)
	}
	if calls := atomic.LoadInt32(&provider.kpiCalls); calls != 2 {
		t.Fatalf("cache hit must not touch the provider, got %d calls", calls)
	}
}

func TestDashboardHandlerExplicitRangeBypassesResolution(t *testing.T) {
	_, store, router := newTestDashboardSetup(t)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/dashboards/executive?tenant=acme&from=2024-01-10&to=2024-01-20", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	// The verbatim dates are in the key, not any resolved period.
	key := "dashboard:executive:acme:2024-01-10:2024-01-20"
	if _, hit, _ := store.Get(context.Background(), key); !hit {
		t.Fatalf("expected payload cached under explicit-range key %q", key)
	}
}

func TestDashboardHandlerTenantScopedKey(t *testing.T) {
	_, store, router := newTestDashboardSetup(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/dashboards/alerts?tenant=acme", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	if _, hit, _ := store.Get(context.Background(), "dashboard:alerts:acme"); !hit {
		t.Fatalf("expected alerts cached under tenant-scoped key")
	}
}

func TestDashboardHandlerRejections(t *testing.T) {
	_, _, router := newTestDashboardSetup(t)

	cases := []struct {
		url  string
		code int
	}{
		{"/v1/dashboards/nonexistent?tenant=acme", http.StatusNotFound},
		{"/v1/dashboards/executive", http.StatusBadRequest},                            // missing tenant
		{"/v1/dashboards/executive?tenant=acme&from=2024-01-10", http.StatusBadRequest}, // partial range
		{"/v1/dashboards/executive?tenant=acme&from=bad&to=2024-01-20", http.StatusBadRequest},
	}

	for _, tc := range cases {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.url, nil))
		if rr.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.url, tc.code, rr.Code)
		}
	}
}

func TestDashboardHandlerProducerFailurePropagates(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(func() { store.Close() })

	h := NewDashboardHandler(dashboard.NewRegistry(failingProvider{&stubProvider{}}), cache.NewOrchestrator(store), time.UTC)
	r := chi.NewRouter()
	r.Get("/v1/dashboards/{name}", h.Get)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/dashboards/alerts?tenant=acme", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on producer failure, got %d", rr.Code)
	}
	if store.Len() != 0 {
		t.Fatalf("failed compute must not be cached")
	}
}

// failingProvider fails the alerts query.
type failingProvider struct{ *stubProvider }

func (failingProvider) RestockAlerts(context.Context, string) ([]query.Alert, error) {
	return nil, context.DeadlineExceeded
}
