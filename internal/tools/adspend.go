package tools

import (
	"context"
	"fmt"

	"github.com/sellerscope/sellerscope/internal/log"
)

// AdSpendName is the tool name for advertising performance reporting.
const AdSpendName = "get_ad_sales_spend"

// AdSpend holds the handler for advertising metrics over std_ad_sales.
type AdSpend struct {
	logger log.Logger
}

// NewAdSpend creates the ad-spend tool handler.
func NewAdSpend(logger log.Logger) *AdSpend {
	return &AdSpend{logger: logger}
}

// GetAdSalesSpend aggregates advertising sales and spend over the selected
// months and derives the efficiency metrics: ACOS and TACOS as percentages,
// ROAS as a ratio, and organic revenue as total revenue minus ad-attributed
// sales.
func (a *AdSpend) GetAdSalesSpend(ctx context.Context, in AdSpendInput, ec ExecContext) (any, error) {
	var months []string
	if in.StartMonth != "" && in.EndMonth != "" {
		var err error
		months, err = expandMonthRange(in.StartMonth, in.EndMonth)
		if err != nil {
			return nil, err
		}
	} else {
		months = monthsForFilter(in.FilterType, ec.now())
	}

	var b queryBuilder
	b.eq("platform", in.Platform)
	b.like("country", in.Country)
	b.eq("sku", in.SKU)
	b.inList("year_month", months)

	query := `
		SELECT
			COALESCE(SUM(ad_sales::float8), 0) AS total_ad_sales,
			COALESCE(SUM(ad_spend::float8), 0) AS total_ad_spend,
			COALESCE(SUM(total_gross_sales::float8), 0) AS total_revenue
		FROM std_ad_sales
		WHERE ` + b.where()

	rows, err := queryMaps(ctx, ec.DB, query, b.args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("aggregate query returned no row")
	}

	adSales := asFloat(rows[0]["total_ad_sales"])
	adSpend := asFloat(rows[0]["total_ad_spend"])
	revenue := asFloat(rows[0]["total_revenue"])

	var acos, tacos, roas float64
	if adSales > 0 {
		acos = adSpend / adSales * 100
	}
	if revenue > 0 {
		tacos = adSpend / revenue * 100
	}
	if adSpend > 0 {
		roas = adSales / adSpend
	}

	return map[string]any{
		"adSales":        adSales,
		"adSpend":        adSpend,
		"revenue":        revenue,
		"ACOS":           acos,
		"TACOS":          tacos,
		"ROAS":           roas,
		"organicRevenue": revenue - adSales,
	}, nil
}
