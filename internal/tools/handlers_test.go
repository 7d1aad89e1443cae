package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerscope/sellerscope/internal/log"
)

func TestGetSalesDataQuery(t *testing.T) {
	db := &fakeDB{columns: []string{"sku", "total_sales"}, rows: [][]any{{"A-1", 120.5}}}
	sales := NewSales(log.NewNop())

	out, err := sales.GetSalesData(context.Background(), SalesInput{
		FilterType:  FilterPreviousMonth,
		SKU:         "A-1, B-2",
		ProductName: "Widget",
		Country:     "US",
	}, testExec(db))
	require.NoError(t, err)

	q := db.lastQuery()
	assert.Contains(t, q.sql, "FROM std_orders")
	assert.Contains(t, q.sql, "sku IN ($1,$2)")
	assert.Contains(t, q.sql, "product_name ILIKE $3")
	assert.Contains(t, q.sql, "country ILIKE $4")
	assert.Contains(t, q.sql, "ORDER BY purchase_date DESC")

	require.Len(t, q.args, 6)
	assert.Equal(t, "A-1", q.args[0])
	assert.Equal(t, "B-2", q.args[1])
	assert.Equal(t, "%Widget%", q.args[2])
	assert.Equal(t, "%US%", q.args[3])
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), q.args[4])
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), q.args[5])

	result := out.(map[string]any)
	assert.Len(t, result["data"], 1)
	assert.Equal(t, map[string]string{"start": "2025-12-01", "end": "2025-12-31"}, result["dateRange"])
}

func TestGetSalesDataCustomDates(t *testing.T) {
	db := &fakeDB{columns: []string{"sku"}}
	sales := NewSales(log.NewNop())

	_, err := sales.GetSalesData(context.Background(), SalesInput{
		StartDate: "2025-06-01",
		EndDate:   "2025-06-15",
	}, testExec(db))
	require.NoError(t, err)

	q := db.lastQuery()
	require.Len(t, q.args, 2)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), q.args[0])
	// Inclusive end day becomes an exclusive bound on the following day.
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), q.args[1])

	_, err = sales.GetSalesData(context.Background(), SalesInput{
		StartDate: "2025-06-15",
		EndDate:   "2025-06-01",
	}, testExec(db))
	assert.Error(t, err)
}

func TestGetRegionalSalesQuery(t *testing.T) {
	db := &fakeDB{columns: []string{"state", "city", "totalSales"}, rows: [][]any{{"CA", "LA", 900.0}}}
	sales := NewSales(log.NewNop())

	out, err := sales.GetRegionalSales(context.Background(), RegionalSalesInput{
		FilterType: FilterCurrentMonth,
		State:      "CA",
	}, testExec(db))
	require.NoError(t, err)

	q := db.lastQuery()
	assert.Contains(t, q.sql, "GROUP BY state, city")
	assert.Contains(t, q.sql, `ORDER BY "totalSales" DESC`)
	assert.Contains(t, q.sql, "state = $1")

	result := out.(map[string]any)
	assert.Len(t, result["data"], 1)
}

func TestGetOrdersDataTotals(t *testing.T) {
	db := &fakeDB{
		columns: []string{"purchase_date", "total_quantity", "total_sales", "order_count"},
		rows: [][]any{
			{time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), int64(10), 500.0, int64(5)},
			{time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC), int64(4), 100.0, int64(2)},
		},
	}
	sales := NewSales(log.NewNop())

	out, err := sales.GetOrdersData(context.Background(), OrdersInput{}, testExec(db))
	require.NoError(t, err)

	result := out.(map[string]any)
	items := result["items"].([]map[string]any)
	require.Len(t, items, 2)
	assert.Equal(t, "2025-12-01", items[0]["date"])
	assert.Equal(t, 100.0, items[0]["aov"])
	assert.Equal(t, 50.0, items[1]["aov"])

	totals := result["totals"].(map[string]any)
	assert.Equal(t, 14, totals["totalQuantity"])
	assert.Equal(t, 600.0, totals["totalSales"])
	assert.Equal(t, 7, totals["totalOrders"])
}

func TestGetOrdersDataMonthRange(t *testing.T) {
	db := &fakeDB{columns: []string{"purchase_date", "total_quantity", "total_sales", "order_count"}}
	sales := NewSales(log.NewNop())

	_, err := sales.GetOrdersData(context.Background(), OrdersInput{
		StartMonth: "11-2025",
		EndMonth:   "12-2025",
	}, testExec(db))
	require.NoError(t, err)

	q := db.lastQuery()
	require.Len(t, q.args, 2)
	assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), q.args[0])
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), q.args[1])
}

func TestInventoryStockLevels(t *testing.T) {
	inv := NewInventory(log.NewNop())

	tests := []struct {
		name string
		call func(db *fakeDB) (any, error)
		want []string
	}{
		{
			name: "overstock",
			call: func(db *fakeDB) (any, error) {
				return inv.GetOverstock(context.Background(), StockLevelInput{Platform: "Amazon"}, testExec(db))
			},
			want: []string{"stock_status = $1", "dos_2 >= $2", "afn_fulfillable_quantity >= $3", "platform ILIKE $4"},
		},
		{
			name: "understock",
			call: func(db *fakeDB) (any, error) {
				return inv.GetUnderstock(context.Background(), StockLevelInput{}, testExec(db))
			},
			want: []string{"stock_status = $1", "dos_2 <= $2", "afn_fulfillable_quantity <= $3"},
		},
		{
			name: "out of stock",
			call: func(db *fakeDB) (any, error) {
				return inv.GetOutOfStock(context.Background(), StockLevelInput{}, testExec(db))
			},
			want: []string{"stock_status = $1", "dos_2 = $2", "afn_fulfillable_quantity = $3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{columns: []string{"sku"}, rows: [][]any{{"A-1"}, {"B-2"}}}
			out, err := tt.call(db)
			require.NoError(t, err)

			q := db.lastQuery()
			assert.Contains(t, q.sql, "FROM std_inventory")
			for _, fragment := range tt.want {
				assert.Contains(t, q.sql, fragment)
			}

			result := out.(map[string]any)
			assert.Equal(t, 2, result["totalItems"])
		})
	}
}

func TestInventoryThresholdValues(t *testing.T) {
	inv := NewInventory(log.NewNop())

	db := &fakeDB{columns: []string{"sku"}}
	_, err := inv.GetOverstock(context.Background(), StockLevelInput{}, testExec(db))
	require.NoError(t, err)
	assert.Equal(t, []any{"Overstock", 90, 90}, db.lastQuery().args)

	db = &fakeDB{columns: []string{"sku"}}
	_, err = inv.GetUnderstock(context.Background(), StockLevelInput{}, testExec(db))
	require.NoError(t, err)
	assert.Equal(t, []any{"Understock", 30, 30}, db.lastQuery().args)

	db = &fakeDB{columns: []string{"sku"}}
	_, err = inv.GetOutOfStock(context.Background(), StockLevelInput{}, testExec(db))
	require.NoError(t, err)
	assert.Equal(t, []any{"Understock", 0, 0}, db.lastQuery().args)
}

func TestGetPnLDataQuery(t *testing.T) {
	db := &fakeDB{columns: []string{"sku", "cm3"}, rows: [][]any{{"A-1", 42.0}}}
	pnl := NewPnL(log.NewNop())

	_, err := pnl.GetPnLData(context.Background(), PnLInput{
		Range:   FilterPreviousMonth,
		CM3Type: CM3Drainer,
	}, testExec(db))
	require.NoError(t, err)

	q := db.lastQuery()
	assert.Contains(t, q.sql, "FROM std_pnl")
	assert.Contains(t, q.sql, "year_month IN ($1)")
	assert.Contains(t, q.sql, "cm3 < 0")
	assert.Contains(t, q.sql, "ORDER BY cm3 DESC")
	assert.Equal(t, []any{"2025-12"}, q.args)
}

func TestGetPnLDataCustomRange(t *testing.T) {
	db := &fakeDB{columns: []string{"sku"}}
	pnl := NewPnL(log.NewNop())

	_, err := pnl.GetPnLData(context.Background(), PnLInput{
		Range:      "customrange",
		StartMonth: "10-2025",
		EndMonth:   "12-2025",
	}, testExec(db))
	require.NoError(t, err)

	assert.Equal(t, []any{"2025-10", "2025-11", "2025-12"}, db.lastQuery().args)
}

func TestGetPnLExecutiveTotals(t *testing.T) {
	db := &fakeDB{
		columns: []string{"sku", "total_sales", "ad_cost", "cm1", "cm2", "cm3"},
		rows: [][]any{
			{"A-1", 1000.0, 100.0, 700.0, 500.0, 300.0},
			{"B-2", 500.0, 50.0, 350.0, 250.0, -20.0},
		},
	}
	pnl := NewPnL(log.NewNop())

	out, err := pnl.GetPnLExecutive(context.Background(), PnLInput{Range: FilterCurrentMonth}, testExec(db))
	require.NoError(t, err)

	result := out.(map[string]any)
	totals := result["totals"].(map[string]float64)
	assert.Equal(t, 1500.0, totals["total_sales"])
	assert.Equal(t, 150.0, totals["ad_cost"])
	assert.Equal(t, 1050.0, totals["cm1"])
	assert.Equal(t, 750.0, totals["cm2"])
	assert.Equal(t, 280.0, totals["cm3"])
	assert.Equal(t, 2, result["skuCount"])
}

func TestGetAdSalesSpendMetrics(t *testing.T) {
	db := &fakeDB{
		columns: []string{"total_ad_sales", "total_ad_spend", "total_revenue"},
		rows:    [][]any{{400.0, 100.0, 1000.0}},
	}
	ad := NewAdSpend(log.NewNop())

	out, err := ad.GetAdSalesSpend(context.Background(), AdSpendInput{FilterType: FilterPreviousMonth}, testExec(db))
	require.NoError(t, err)

	result := out.(map[string]any)
	assert.Equal(t, 400.0, result["adSales"])
	assert.Equal(t, 100.0, result["adSpend"])
	assert.Equal(t, 1000.0, result["revenue"])
	assert.InDelta(t, 25.0, result["ACOS"], 1e-9)
	assert.InDelta(t, 10.0, result["TACOS"], 1e-9)
	assert.InDelta(t, 4.0, result["ROAS"], 1e-9)
	assert.Equal(t, 600.0, result["organicRevenue"])

	q := db.lastQuery()
	assert.Contains(t, q.sql, "FROM std_ad_sales")
	assert.Contains(t, q.sql, "year_month IN ($1)")
}

func TestGetAdSalesSpendZeroDenominators(t *testing.T) {
	db := &fakeDB{
		columns: []string{"total_ad_sales", "total_ad_spend", "total_revenue"},
		rows:    [][]any{{0.0, 0.0, 0.0}},
	}
	ad := NewAdSpend(log.NewNop())

	out, err := ad.GetAdSalesSpend(context.Background(), AdSpendInput{}, testExec(db))
	require.NoError(t, err)

	result := out.(map[string]any)
	assert.Equal(t, 0.0, result["ACOS"])
	assert.Equal(t, 0.0, result["TACOS"])
	assert.Equal(t, 0.0, result["ROAS"])
}
