package query

import (
	"context"

	"opsdash-api/internal/period"
)

// Provider is the read-only aggregation interface dashboards are built from.
// Every method is idempotent under repeated calls with identical parameters,
// which is what lets the cache layer recompute freely.
type Provider interface {
	SalesKPIs(ctx context.Context, tenant string, r period.Range) (SalesKPIs, error)
	RevenueTrend(ctx context.Context, tenant string, r period.Range) ([]TrendPoint, error)
	StatusDistribution(ctx context.Context, tenant string, r period.Range) ([]StatusCount, error)
	LogisticsPipeline(ctx context.Context, tenant string, r period.Range) ([]PipelineCount, error)
	ShipmentTracking(ctx context.Context, tenant string, r period.Range) ([]PipelineCount, error)
	CancellationReasons(ctx context.Context, tenant string, r period.Range, limit int) ([]ReasonCount, error)
	TopProducts(ctx context.Context, tenant string, r period.Range, limit int) ([]ProductSales, error)
	TopSuppliers(ctx context.Context, tenant string, r period.Range, limit int) ([]SupplierSales, error)
	CustomerInsights(ctx context.Context, tenant string, r period.Range) (CustomerInsights, error)
	OperationsFunnel(ctx context.Context, tenant string, r period.Range) ([]FunnelStage, error)
	StockSummary(ctx context.Context, tenant string) (StockSummary, error)
	TopStockItems(ctx context.Context, tenant string, limit int) ([]StockItem, error)
	RestockAlerts(ctx context.Context, tenant string) ([]Alert, error)
}

// SalesKPIs is the headline order metrics block. Rates are percentages
// rounded to one decimal and zero-guarded.
type SalesKPIs struct {
	TotalOrders int     `json:"total_orders"`
	GMV         float64 `json:"gmv"`
	AOV         float64 `json:"aov"`
	Confirmed   int     `json:"confirmed"`
	Cancelled   int     `json:"cancelled"`
	Pending     int     `json:"pending"`
	Draft       int     `json:"draft"`
	Shipped     int     `json:"shipped"`
	ReadyToShip int     `json:"ready_to_ship"`
	Delivered   int     `json:"delivered"`
	Returns     int     `json:"returns"`

	ConfirmationRate float64 `json:"confirmation_rate"`
	CancellationRate float64 `json:"cancellation_rate"`
	DeliveryRate     float64 `json:"delivery_rate"`
	ReturnRate       float64 `json:"return_rate"`
}

// TrendPoint is one day of the revenue trend chart.
type TrendPoint struct {
	Date      string  `json:"date"`
	GMV       float64 `json:"gmv"`
	Orders    int     `json:"orders"`
	Confirmed int     `json:"confirmed"`
}

// StatusCount is one slice of the sales-status breakdown.
type StatusCount struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	GMV    float64 `json:"gmv"`
}

// PipelineCount is one stage of a logistics or shipment breakdown.
type PipelineCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

type ProductSales struct {
	ItemCode string  `json:"item_code"`
	ItemName string  `json:"item_name"`
	Qty      float64 `json:"qty"`
	Revenue  float64 `json:"revenue"`
}

type SupplierSales struct {
	Supplier string  `json:"supplier"`
	Qty      float64 `json:"qty"`
	Revenue  float64 `json:"revenue"`
	Orders   int     `json:"orders"`
}

type CustomerInsights struct {
	UniqueCustomers   int     `json:"unique_customers"`
	NewCustomers      int     `json:"new_customers"`
	RepeatCustomers   int     `json:"repeat_customers"`
	AvgOrderFrequency float64 `json:"avg_order_frequency"`
	TotalOrders       int     `json:"total_orders"`
}

// FunnelStage carries its chart color so the payload renders without a
// client-side stage-to-color mapping.
type FunnelStage struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

type StockSummary struct {
	TotalItems int     `json:"total_items"`
	TotalStock float64 `json:"total_stock"`
	TotalValue float64 `json:"total_value"`
	OutOfStock int     `json:"out_of_stock"`
	LowStock   int     `json:"low_stock"`
}

type StockItem struct {
	ItemCode  string  `json:"item_code"`
	ItemName  string  `json:"item_name"`
	Qty       float64 `json:"qty"`
	Value     float64 `json:"value"`
	Warehouse string  `json:"warehouse"`
}

// Alert is one row of the alerts dashboard.
type Alert struct {
	Type     string `json:"type"`     // warning | danger
	Category string `json:"category"` // Inventory, Orders, ...
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Priority string `json:"priority"` // high | medium | low
	Link     string `json:"link"`
}
