package tools

import (
	"fmt"

	"github.com/sellerscope/sellerscope/internal/log"
)

// NewDefaultRegistry builds a registry with every reporting tool registered.
// Schema derivation failures surface here, at startup.
func NewDefaultRegistry(logger log.Logger) (*Registry, error) {
	r := NewRegistry(logger)

	sales := NewSales(logger)
	inventory := NewInventory(logger)
	pnl := NewPnL(logger)
	adSpend := NewAdSpend(logger)

	if err := Register(r, SalesDataName,
		"Get sales data from orders. Returns purchase dates, SKUs, quantities, total sales, "+
			"product names, categories, cities, states, and AOV (average order value). "+
			"Supports filtering by SKU, product name, category, city, state, country, platform, and date ranges.",
		sales.GetSalesData); err != nil {
		return nil, fmt.Errorf("registering %s: %w", SalesDataName, err)
	}

	if err := Register(r, RegionalSalesName,
		"Get regional sales aggregated by state and city. "+
			"Returns total sales, quantities, and order counts grouped by location.",
		sales.GetRegionalSales); err != nil {
		return nil, fmt.Errorf("registering %s: %w", RegionalSalesName, err)
	}

	if err := Register(r, OrdersDataName,
		"Get a day-by-day order breakdown with quantities, sales, order counts, and per-day AOV, "+
			"plus totals for the whole period.",
		sales.GetOrdersData); err != nil {
		return nil, fmt.Errorf("registering %s: %w", OrdersDataName, err)
	}

	if err := Register(r, InventoryDataName,
		"Get inventory data. Returns SKU, quantity, product name, category, country, platform, "+
			"stock status, and inventory value. All filters are partial matches.",
		inventory.GetInventoryData); err != nil {
		return nil, fmt.Errorf("registering %s: %w", InventoryDataName, err)
	}

	if err := Register(r, InventoryOverstockName,
		"Get overstocked inventory items: 90 or more days of supply with high fulfillable quantity. "+
			"Use this to find items tying up capital.",
		inventory.GetOverstock); err != nil {
		return nil, fmt.Errorf("registering %s: %w", InventoryOverstockName, err)
	}

	if err := Register(r, InventoryUnderstockName,
		"Get understocked inventory items: 30 or fewer days of supply remaining. "+
			"Use this to find items that need reordering soon.",
		inventory.GetUnderstock); err != nil {
		return nil, fmt.Errorf("registering %s: %w", InventoryUnderstockName, err)
	}

	if err := Register(r, InventoryOutOfStockName,
		"Get inventory items that are completely out of stock: zero days of supply and "+
			"zero fulfillable quantity.",
		inventory.GetOutOfStock); err != nil {
		return nil, fmt.Errorf("registering %s: %w", InventoryOutOfStockName, err)
	}

	if err := Register(r, PnLDataName,
		"Get profit and loss data per SKU: total sales, ad cost, and contribution margins "+
			"(CM1, CM2, CM3), sorted by CM3. Filter by month range and by gainer/drainer.",
		pnl.GetPnLData); err != nil {
		return nil, fmt.Errorf("registering %s: %w", PnLDataName, err)
	}

	if err := Register(r, PnLExecutiveName,
		"Get an executive profit and loss summary: company-wide totals for sales, ad cost, "+
			"and contribution margins over the selected months.",
		pnl.GetPnLExecutive); err != nil {
		return nil, fmt.Errorf("registering %s: %w", PnLExecutiveName, err)
	}

	if err := Register(r, AdSpendName,
		"Get advertising performance: ad sales, ad spend, total revenue, ACOS, TACOS, ROAS, "+
			"and organic revenue for the selected months.",
		adSpend.GetAdSalesSpend); err != nil {
		return nil, fmt.Errorf("registering %s: %w", AdSpendName, err)
	}

	return r, nil
}
