package query

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"opsdash-api/internal/period"
)

// DB is the DuckDB-backed Provider. One analytic store holds the replicated
// order and stock records the dashboards aggregate over.
type DB struct {
	conn *sql.DB
}

// Open connects to the DuckDB database at cfg.Path and ensures the schema
// exists.
func Open(cfg Config) (*DB, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, cfg.Threads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			tenant TEXT NOT NULL,
			customer TEXT,
			grand_total DOUBLE DEFAULT 0,
			sales_status TEXT,
			logistics_status TEXT,
			shipment_status TEXT,
			cancellation_reason TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id TEXT NOT NULL,
			item_code TEXT NOT NULL,
			item_name TEXT,
			supplier TEXT,
			qty DOUBLE DEFAULT 0,
			amount DOUBLE DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS stock_levels (
			tenant TEXT NOT NULL,
			warehouse TEXT NOT NULL,
			item_code TEXT NOT NULL,
			item_name TEXT,
			actual_qty DOUBLE DEFAULT 0,
			stock_value DOUBLE DEFAULT 0
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// rangeBounds converts an inclusive date range into a half-open timestamp
// window [from, to+1d) for created_at comparisons.
func rangeBounds(r period.Range) (time.Time, time.Time) {
	return r.From, r.To.AddDate(0, 0, 1)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func pct(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return round1(float64(part) / float64(whole) * 100)
}

// SalesKPIs computes the headline order metrics in a single query.
func (db *DB) SalesKPIs(ctx context.Context, tenant string, r period.Range) (SalesKPIs, error) {
	from, until := rangeBounds(r)

	row := db.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(id),
			COALESCE(SUM(grand_total), 0),
			COALESCE(AVG(grand_total), 0),
			COALESCE(SUM(CASE WHEN sales_status = 'Confirmed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sales_status = 'Cancelled' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sales_status = 'Pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sales_status = 'Draft' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN logistics_status = 'Shipped' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN logistics_status = 'Ready to Ship' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN shipment_status = 'Delivered' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN shipment_status = 'Return' THEN 1 ELSE 0 END), 0)
		FROM orders
		WHERE tenant = ? AND created_at >= ? AND created_at < ?
	`, tenant, from, until)

	var k SalesKPIs
	if err := row.Scan(
		&k.TotalOrders, &k.GMV, &k.AOV,
		&k.Confirmed, &k.Cancelled, &k.Pending, &k.Draft,
		&k.Shipped, &k.ReadyToShip, &k.Delivered, &k.Returns,
	); err != nil {
		return SalesKPIs{}, fmt.Errorf("sales kpis: %w", err)
	}

	k.ConfirmationRate = pct(k.Confirmed, k.TotalOrders)
	k.CancellationRate = pct(k.Cancelled, k.TotalOrders)
	k.DeliveryRate = pct(k.Delivered, k.Confirmed)
	k.ReturnRate = pct(k.Returns, k.Confirmed)
	return k, nil
}

// RevenueTrend returns daily GMV/order counts for charting.
func (db *DB) RevenueTrend(ctx context.Context, tenant string, r period.Range) ([]TrendPoint, error) {
	from, until := rangeBounds(r)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT
			CAST(created_at AS DATE),
			COALESCE(SUM(grand_total), 0),
			COUNT(id),
			COALESCE(SUM(CASE WHEN sales_status = 'Confirmed' THEN 1 ELSE 0 END), 0)
		FROM orders
		WHERE tenant = ? AND created_at >= ? AND created_at < ?
		GROUP BY CAST(created_at AS DATE)
		ORDER BY CAST(created_at AS DATE) ASC
	`, tenant, from, until)
	if err != nil {
		return nil, fmt.Errorf("revenue trend: %w", err)
	}
	defer rows.Close()

	var trend []TrendPoint
	for rows.Next() {
		var day time.Time
		var p TrendPoint
		if err := rows.Scan(&day, &p.GMV, &p.Orders, &p.Confirmed); err != nil {
			return nil, fmt.Errorf("revenue trend scan: %w", err)
		}
		p.Date = day.Format(period.DateLayout)
		trend = append(trend, p)
	}
	return trend, rows.Err()
}

// StatusDistribution is the sales-status breakdown for pie/donut charts.
func (db *DB) StatusDistribution(ctx context.Context, tenant string, r period.Range) ([]StatusCount, error) {
	from, until := rangeBounds(r)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT
			COALESCE(sales_status, 'Unknown'),
			COUNT(id),
			COALESCE(SUM(grand_total), 0)
		FROM orders
		WHERE tenant = ? AND created_at >= ? AND created_at < ?
		GROUP BY sales_status
		ORDER BY COUNT(id) DESC
	`, tenant, from, until)
	if err != nil {
		return nil, fmt.Errorf("status distribution: %w", err)
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var s StatusCount
		if err := rows.Scan(&s.Status, &s.Count, &s.GMV); err != nil {
			return nil, fmt.Errorf("status distribution scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (db *DB) LogisticsPipeline(ctx context.Context, tenant string, r period.Range) ([]PipelineCount, error) {
	return db.pipelineBreakdown(ctx, tenant, r, "logistics_status", "Unknown")
}

func (db *DB) ShipmentTracking(ctx context.Context, tenant string, r period.Range) ([]PipelineCount, error) {
	return db.pipelineBreakdown(ctx, tenant, r, "shipment_status", "Pending")
}

func (db *DB) pipelineBreakdown(ctx context.Context, tenant string, r period.Range, column, fallback string) ([]PipelineCount, error) {
	from, until := rangeBounds(r)

	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT COALESCE(%s, ?), COUNT(id)
		FROM orders
		WHERE tenant = ? AND created_at >= ? AND created_at < ?
		GROUP BY %s
		ORDER BY COUNT(id) DESC
	`, column, column), fallback, tenant, from, until)
	if err != nil {
		return nil, fmt.Errorf("%s breakdown: %w", column, err)
	}
	defer rows.Close()

	var out []PipelineCount
	for rows.Next() {
		var p PipelineCount
		if err := rows.Scan(&p.Status, &p.Count); err != nil {
			return nil, fmt.Errorf("%s breakdown scan: %w", column, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CancellationReasons returns the top reasons among cancelled orders.
func (db *DB) CancellationReasons(ctx context.Context, tenant string, r period.Range, limit int) ([]ReasonCount, error) {
	from, until := rangeBounds(r)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT COALESCE(cancellation_reason, 'Unknown'), COUNT(id)
		FROM orders
		WHERE tenant = ? AND sales_status = 'Cancelled'
			AND created_at >= ? AND created_at < ?
		GROUP BY cancellation_reason
		ORDER BY COUNT(id) DESC
		LIMIT ?
	`, tenant, from, until, limit)
	if err != nil {
		return nil, fmt.Errorf("cancellation reasons: %w", err)
	}
	defer rows.Close()

	var out []ReasonCount
	for rows.Next() {
		var rc ReasonCount
		if err := rows.Scan(&rc.Reason, &rc.Count); err != nil {
			return nil, fmt.Errorf("cancellation reasons scan: %w", err)
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// TopProducts ranks items by revenue across delivered orders.
func (db *DB) TopProducts(ctx context.Context, tenant string, r period.Range, limit int) ([]ProductSales, error) {
	from, until := rangeBounds(r)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT
			oi.item_code,
			COALESCE(oi.item_name, oi.item_code),
			COALESCE(SUM(oi.qty), 0),
			COALESCE(SUM(oi.amount), 0)
		FROM order_items oi
		INNER JOIN orders o ON o.id = oi.order_id
		WHERE o.tenant = ? AND o.created_at >= ? AND o.created_at < ?
			AND o.shipment_status = 'Delivered'
		GROUP BY oi.item_code, COALESCE(oi.item_name, oi.item_code)
		ORDER BY COALESCE(SUM(oi.amount), 0) DESC
		LIMIT ?
	`, tenant, from, until, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	var out []ProductSales
	for rows.Next() {
		var p ProductSales
		if err := rows.Scan(&p.ItemCode, &p.ItemName, &p.Qty, &p.Revenue); err != nil {
			return nil, fmt.Errorf("top products scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// TopSuppliers ranks suppliers by revenue across delivered orders.
func (db *DB) TopSuppliers(ctx context.Context, tenant string, r period.Range, limit int) ([]SupplierSales, error) {
	from, until := rangeBounds(r)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT
			COALESCE(oi.supplier, 'Unknown'),
			COALESCE(SUM(oi.qty), 0),
			COALESCE(SUM(oi.amount), 0),
			COUNT(DISTINCT oi.order_id)
		FROM order_items oi
		INNER JOIN orders o ON o.id = oi.order_id
		WHERE o.tenant = ? AND o.created_at >= ? AND o.created_at < ?
			AND o.shipment_status = 'Delivered'
		GROUP BY COALESCE(oi.supplier, 'Unknown')
		ORDER BY COALESCE(SUM(oi.amount), 0) DESC
		LIMIT ?
	`, tenant, from, until, limit)
	if err != nil {
		return nil, fmt.Errorf("top suppliers: %w", err)
	}
	defer rows.Close()

	var out []SupplierSales
	for rows.Next() {
		var s SupplierSales
		if err := rows.Scan(&s.Supplier, &s.Qty, &s.Revenue, &s.Orders); err != nil {
			return nil, fmt.Errorf("top suppliers scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CustomerInsights derives unique/new/repeat customer counts from per-customer
// order counts.
func (db *DB) CustomerInsights(ctx context.Context, tenant string, r period.Range) (CustomerInsights, error) {
	from, until := rangeBounds(r)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT customer, COUNT(id)
		FROM orders
		WHERE tenant = ? AND created_at >= ? AND created_at < ?
		GROUP BY customer
	`, tenant, from, until)
	if err != nil {
		return CustomerInsights{}, fmt.Errorf("customer insights: %w", err)
	}
	defer rows.Close()

	var ci CustomerInsights
	for rows.Next() {
		var customer sql.NullString
		var orderCount int
		if err := rows.Scan(&customer, &orderCount); err != nil {
			return CustomerInsights{}, fmt.Errorf("customer insights scan: %w", err)
		}
		ci.UniqueCustomers++
		if orderCount > 1 {
			ci.RepeatCustomers++
		}
		ci.TotalOrders += orderCount
	}
	if err := rows.Err(); err != nil {
		return CustomerInsights{}, err
	}

	ci.NewCustomers = ci.UniqueCustomers - ci.RepeatCustomers
	if ci.UniqueCustomers > 0 {
		ci.AvgOrderFrequency = round1(float64(ci.TotalOrders) / float64(ci.UniqueCustomers))
	}
	return ci, nil
}

// OperationsFunnel returns the full order lifecycle as ordered stages.
func (db *DB) OperationsFunnel(ctx context.Context, tenant string, r period.Range) ([]FunnelStage, error) {
	from, until := rangeBounds(r)

	row := db.conn.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN sales_status = 'Draft' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sales_status = 'Pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sales_status = 'Confirmed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN logistics_status = 'Ready to Ship' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN logistics_status = 'Shipped' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN shipment_status = 'Delivered' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN shipment_status = 'Return' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sales_status = 'Cancelled' THEN 1 ELSE 0 END), 0)
		FROM orders
		WHERE tenant = ? AND created_at >= ? AND created_at < ?
	`, tenant, from, until)

	var draft, pending, confirmed, readyToShip, shipped, delivered, returns, cancelled int
	if err := row.Scan(&draft, &pending, &confirmed, &readyToShip, &shipped, &delivered, &returns, &cancelled); err != nil {
		return nil, fmt.Errorf("operations funnel: %w", err)
	}

	return []FunnelStage{
		{Stage: "Draft", Count: draft, Color: "#64748b"},
		{Stage: "Pending", Count: pending, Color: "#a855f7"},
		{Stage: "Confirmed", Count: confirmed, Color: "#3b82f6"},
		{Stage: "Ready to Ship", Count: readyToShip, Color: "#06b6d4"},
		{Stage: "Shipped", Count: shipped, Color: "#14b8a6"},
		{Stage: "Delivered", Count: delivered, Color: "#22c55e"},
		{Stage: "Returns", Count: returns, Color: "#f97316"},
		{Stage: "Cancelled", Count: cancelled, Color: "#ef4444"},
	}, nil
}

// StockSummary aggregates stock positions across the tenant's warehouses.
func (db *DB) StockSummary(ctx context.Context, tenant string) (StockSummary, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(DISTINCT item_code),
			COALESCE(SUM(actual_qty), 0),
			COALESCE(SUM(stock_value), 0),
			COALESCE(SUM(CASE WHEN actual_qty <= 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN actual_qty > 0 AND actual_qty <= 5 THEN 1 ELSE 0 END), 0)
		FROM stock_levels
		WHERE tenant = ?
	`, tenant)

	var s StockSummary
	if err := row.Scan(&s.TotalItems, &s.TotalStock, &s.TotalValue, &s.OutOfStock, &s.LowStock); err != nil {
		return StockSummary{}, fmt.Errorf("stock summary: %w", err)
	}
	return s, nil
}

// TopStockItems lists in-stock items by stock value.
func (db *DB) TopStockItems(ctx context.Context, tenant string, limit int) ([]StockItem, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT item_code, COALESCE(item_name, item_code), actual_qty, stock_value, warehouse
		FROM stock_levels
		WHERE tenant = ? AND actual_qty > 0
		ORDER BY stock_value DESC
		LIMIT ?
	`, tenant, limit)
	if err != nil {
		return nil, fmt.Errorf("top stock items: %w", err)
	}
	defer rows.Close()

	var out []StockItem
	for rows.Next() {
		var it StockItem
		if err := rows.Scan(&it.ItemCode, &it.ItemName, &it.Qty, &it.Value, &it.Warehouse); err != nil {
			return nil, fmt.Errorf("top stock items scan: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// RestockAlerts builds the low-stock and out-of-stock alert list.
func (db *DB) RestockAlerts(ctx context.Context, tenant string) ([]Alert, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT item_code, COALESCE(item_name, item_code), actual_qty, warehouse
		FROM stock_levels
		WHERE tenant = ? AND actual_qty > 0 AND actual_qty <= 3
		ORDER BY actual_qty ASC
		LIMIT 20
	`, tenant)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var code, name, warehouse string
		var qty float64
		if err := rows.Scan(&code, &name, &qty, &warehouse); err != nil {
			return nil, fmt.Errorf("low stock scan: %w", err)
		}
		priority := "medium"
		if qty <= 1 {
			priority = "high"
		}
		alerts = append(alerts, Alert{
			Type:     "warning",
			Category: "Inventory",
			Title:    fmt.Sprintf("Low Stock: %s", name),
			Detail:   fmt.Sprintf("Only %d units left in %s", int(qty), warehouse),
			Priority: priority,
			Link:     "/app/item/" + code,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.conn.QueryContext(ctx, `
		SELECT item_code, COALESCE(item_name, item_code), warehouse
		FROM stock_levels
		WHERE tenant = ? AND actual_qty <= 0
		LIMIT 20
	`, tenant)
	if err != nil {
		return nil, fmt.Errorf("out of stock: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code, name, warehouse string
		if err := rows.Scan(&code, &name, &warehouse); err != nil {
			return nil, fmt.Errorf("out of stock scan: %w", err)
		}
		alerts = append(alerts, Alert{
			Type:     "danger",
			Category: "Inventory",
			Title:    fmt.Sprintf("Out of Stock: %s", name),
			Detail:   fmt.Sprintf("No units left in %s", warehouse),
			Priority: "high",
			Link:     "/app/item/" + code,
		})
	}
	return alerts, rows.Err()
}
