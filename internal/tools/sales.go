package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/sellerscope/sellerscope/internal/log"
)

// Tool names for the sales and order reporting tools.
const (
	SalesDataName     = "get_sales_data"
	RegionalSalesName = "get_regional_sales"
	OrdersDataName    = "get_orders_data"
)

// Sales holds the handlers for order-level reporting over std_orders.
type Sales struct {
	logger log.Logger
}

// NewSales creates the sales tool handlers.
func NewSales(logger log.Logger) *Sales {
	return &Sales{logger: logger}
}

// GetSalesData returns order rows matching the filters, newest first.
func (s *Sales) GetSalesData(ctx context.Context, in SalesInput, ec ExecContext) (any, error) {
	dr, err := salesDateRange(in, ec.now())
	if err != nil {
		return nil, err
	}

	var b queryBuilder
	b.in("sku", in.SKU)
	b.like("product_name", in.ProductName)
	b.eq("product_category", in.Category)
	b.eq("city", in.City)
	b.eq("state", in.State)
	b.like("country", in.Country)
	b.like("platform", in.Platform)
	b.dateRange("purchase_date", dr)

	query := `
		SELECT
			purchase_date,
			purchase_hour,
			purchase_time,
			order_status,
			sku,
			quantity::float8 AS quantity,
			total_sales::float8 AS total_sales,
			item_price::float8 AS item_price,
			city,
			state,
			aov::float8 AS aov,
			product_category,
			product_name
		FROM std_orders
		WHERE ` + b.where() + `
		ORDER BY purchase_date DESC`

	rows, err := queryMaps(ctx, ec.DB, query, b.args...)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"data": rows,
		"dateRange": map[string]string{
			"start": formatDay(dr.Start),
			"end":   formatDay(dr.End.AddDate(0, 0, -1)),
		},
		"filters": in,
	}, nil
}

// GetRegionalSales returns sales aggregated by state and city.
func (s *Sales) GetRegionalSales(ctx context.Context, in RegionalSalesInput, ec ExecContext) (any, error) {
	dr := rangeForFilter(in.FilterType, ec.now())

	var b queryBuilder
	b.in("sku", in.SKU)
	b.eq("product_category", in.ProductCategory)
	b.eq("state", in.State)
	b.eq("city", in.City)
	b.like("country", in.Country)
	b.like("platform", in.Platform)
	b.dateRange("purchase_date", dr)

	query := `
		SELECT
			state,
			city,
			SUM(total_sales::float8) AS "totalSales",
			SUM(quantity::float8) AS "totalQuantity",
			COUNT(DISTINCT order_id) AS "totalOrders"
		FROM std_orders
		WHERE ` + b.where() + `
		GROUP BY state, city
		ORDER BY "totalSales" DESC`

	rows, err := queryMaps(ctx, ec.DB, query, b.args...)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"data": rows,
		"dateRange": map[string]string{
			"start": formatDay(dr.Start),
			"end":   formatDay(dr.End.AddDate(0, 0, -1)),
		},
	}, nil
}

// GetOrdersData returns a per-day order breakdown with period totals.
func (s *Sales) GetOrdersData(ctx context.Context, in OrdersInput, ec ExecContext) (any, error) {
	var dr DateRange
	if in.StartMonth != "" && in.EndMonth != "" {
		var err error
		dr, err = monthRangeToDates(in.StartMonth, in.EndMonth)
		if err != nil {
			return nil, err
		}
	} else {
		dr = rangeForFilter(in.FilterType, ec.now())
	}

	var b queryBuilder
	b.in("sku", in.SKU)
	b.like("platform", in.Platform)
	b.eq("state", in.State)
	b.eq("city", in.City)
	b.like("country", in.Country)
	b.dateRange("purchase_date", dr)

	query := `
		SELECT
			purchase_date::date AS purchase_date,
			SUM(quantity::int) AS total_quantity,
			SUM(total_sales::float8) AS total_sales,
			COUNT(DISTINCT order_id) AS order_count
		FROM std_orders
		WHERE ` + b.where() + `
		GROUP BY purchase_date::date
		ORDER BY purchase_date`

	rows, err := queryMaps(ctx, ec.DB, query, b.args...)
	if err != nil {
		return nil, err
	}

	items := make([]map[string]any, 0, len(rows))
	var totalQuantity, totalSales, totalOrders float64
	for _, row := range rows {
		quantity := asFloat(row["total_quantity"])
		sales := asFloat(row["total_sales"])
		orders := asFloat(row["order_count"])

		aov := 0.0
		if orders > 0 {
			aov = sales / orders
		}
		items = append(items, map[string]any{
			"date":          dayString(row["purchase_date"]),
			"totalQuantity": int(quantity),
			"totalSales":    sales,
			"orderCount":    int(orders),
			"aov":           aov,
		})

		totalQuantity += quantity
		totalSales += sales
		totalOrders += orders
	}

	return map[string]any{
		"items": items,
		"totals": map[string]any{
			"totalQuantity": int(totalQuantity),
			"totalSales":    totalSales,
			"totalOrders":   int(totalOrders),
		},
		"dateRange": map[string]string{
			"start": formatDay(dr.Start),
			"end":   formatDay(dr.End.AddDate(0, 0, -1)),
		},
	}, nil
}

// salesDateRange prefers an explicit startDate/endDate pair over filterType.
func salesDateRange(in SalesInput, now time.Time) (DateRange, error) {
	if in.StartDate == "" || in.EndDate == "" {
		return rangeForFilter(in.FilterType, now), nil
	}
	start, err := time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid startDate %q: expected YYYY-MM-DD", in.StartDate)
	}
	end, err := time.Parse("2006-01-02", in.EndDate)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid endDate %q: expected YYYY-MM-DD", in.EndDate)
	}
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("endDate %q precedes startDate %q", in.EndDate, in.StartDate)
	}
	// The inclusive end day becomes an exclusive bound.
	return DateRange{Start: start, End: end.AddDate(0, 0, 1)}, nil
}

func dayString(v any) string {
	if t, ok := v.(time.Time); ok {
		return formatDay(t)
	}
	return fmt.Sprintf("%v", v)
}
