package tools

import (
	"context"

	"github.com/sellerscope/sellerscope/internal/log"
)

// Tool names for the profit-and-loss reporting tools.
const (
	PnLDataName      = "get_pnl_data"
	PnLExecutiveName = "get_pnl_executive"
)

// CM3 filter values for PnL queries.
const (
	CM3Gainer  = "gainer"
	CM3Drainer = "drainer"
)

// PnL holds the handlers for contribution-margin reporting over std_pnl.
type PnL struct {
	logger log.Logger
}

// NewPnL creates the PnL tool handlers.
func NewPnL(logger log.Logger) *PnL {
	return &PnL{logger: logger}
}

// GetPnLData returns per-SKU contribution margins over the selected months,
// best CM3 first.
func (p *PnL) GetPnLData(ctx context.Context, in PnLInput, ec ExecContext) (any, error) {
	rows, err := p.query(ctx, in, ec)
	if err != nil {
		return nil, err
	}
	return map[string]any{"data": rows}, nil
}

// GetPnLExecutive folds the per-SKU PnL rows into one set of totals.
func (p *PnL) GetPnLExecutive(ctx context.Context, in PnLInput, ec ExecContext) (any, error) {
	rows, err := p.query(ctx, in, ec)
	if err != nil {
		return nil, err
	}

	totals := map[string]float64{
		"total_sales": 0,
		"ad_cost":     0,
		"cm1":         0,
		"cm2":         0,
		"cm3":         0,
	}
	for _, row := range rows {
		for key := range totals {
			totals[key] += asFloat(row[key])
		}
	}
	return map[string]any{"totals": totals, "skuCount": len(rows)}, nil
}

func (p *PnL) query(ctx context.Context, in PnLInput, ec ExecContext) ([]map[string]any, error) {
	var b queryBuilder
	b.eq("sku", in.SKU)
	b.eq("product_category", in.Category)
	b.eq("product_name", in.ProductName)
	b.eq("country", in.Country)
	b.eq("platform", in.Platform)

	months, err := p.months(in, ec)
	if err != nil {
		return nil, err
	}
	b.inList("year_month", months)

	switch in.CM3Type {
	case CM3Gainer:
		b.cond("cm3 >= 0")
	case CM3Drainer:
		b.cond("cm3 < 0")
	}

	query := `
		SELECT
			sku,
			MAX(product_name) AS product_name,
			MAX(product_category) AS product_category,
			MAX(country) AS country,
			MAX(platform) AS platform,
			SUM(total_sales::float8) AS total_sales,
			SUM(ad_cost::float8) AS ad_cost,
			SUM(cm1::float8) AS cm1,
			SUM(cm2::float8) AS cm2,
			SUM(cm3::float8) AS cm3
		FROM std_pnl
		WHERE ` + b.where() + `
		GROUP BY sku
		ORDER BY cm3 DESC`

	return queryMaps(ctx, ec.DB, query, b.args...)
}

func (p *PnL) months(in PnLInput, ec ExecContext) ([]string, error) {
	if in.Range == "customrange" && in.StartMonth != "" && in.EndMonth != "" {
		return expandMonthRange(in.StartMonth, in.EndMonth)
	}
	return monthsForFilter(in.Range, ec.now()), nil
}
