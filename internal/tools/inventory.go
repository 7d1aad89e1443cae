package tools

import (
	"context"

	"github.com/sellerscope/sellerscope/internal/log"
)

// Tool names for the inventory reporting tools.
const (
	InventoryDataName       = "get_inventory_data"
	InventoryOverstockName  = "get_inventory_overstock"
	InventoryUnderstockName = "get_inventory_understock"
	InventoryOutOfStockName = "get_inventory_out_of_stock"
)

// Stock-level thresholds on days-of-supply and fulfillable quantity.
const (
	overstockFloor   = 90
	understockCeil   = 30
	outOfStockExact  = 0
	overstockStatus  = "Overstock"
	understockStatus = "Understock"
)

// Inventory holds the handlers for stock reporting over std_inventory.
type Inventory struct {
	logger log.Logger
}

// NewInventory creates the inventory tool handlers.
func NewInventory(logger log.Logger) *Inventory {
	return &Inventory{logger: logger}
}

// GetInventoryData returns inventory rows matching the filters.
func (v *Inventory) GetInventoryData(ctx context.Context, in InventoryInput, ec ExecContext) (any, error) {
	var b queryBuilder
	b.like("sku", in.SKU)
	b.like("product_category", in.Category)
	b.like("product_name", in.Product)
	b.like("country", in.Country)
	b.like("platform", in.Platform)

	rows, err := queryMaps(ctx, ec.DB, "SELECT * FROM std_inventory WHERE "+b.where(), b.args...)
	if err != nil {
		return nil, err
	}
	return map[string]any{"data": rows, "totalItems": len(rows)}, nil
}

// GetOverstock returns items carrying at least 90 days of supply.
func (v *Inventory) GetOverstock(ctx context.Context, in StockLevelInput, ec ExecContext) (any, error) {
	var b queryBuilder
	b.eq("stock_status", overstockStatus)
	b.cond("dos_2 >= " + b.arg(overstockFloor))
	b.cond("afn_fulfillable_quantity >= " + b.arg(overstockFloor))
	b.like("platform", in.Platform)
	b.like("country", in.Country)

	return v.stockQuery(ctx, ec, &b)
}

// GetUnderstock returns items down to 30 or fewer days of supply.
func (v *Inventory) GetUnderstock(ctx context.Context, in StockLevelInput, ec ExecContext) (any, error) {
	var b queryBuilder
	b.eq("stock_status", understockStatus)
	b.cond("dos_2 <= " + b.arg(understockCeil))
	b.cond("afn_fulfillable_quantity <= " + b.arg(understockCeil))
	b.like("platform", in.Platform)
	b.like("country", in.Country)

	return v.stockQuery(ctx, ec, &b)
}

// GetOutOfStock returns items with nothing left to fulfill.
func (v *Inventory) GetOutOfStock(ctx context.Context, in StockLevelInput, ec ExecContext) (any, error) {
	var b queryBuilder
	b.eq("stock_status", understockStatus)
	b.cond("dos_2 = " + b.arg(outOfStockExact))
	b.cond("afn_fulfillable_quantity = " + b.arg(outOfStockExact))
	b.like("platform", in.Platform)
	b.like("country", in.Country)

	return v.stockQuery(ctx, ec, &b)
}

func (v *Inventory) stockQuery(ctx context.Context, ec ExecContext, b *queryBuilder) (any, error) {
	rows, err := queryMaps(ctx, ec.DB, "SELECT * FROM std_inventory WHERE "+b.where(), b.args...)
	if err != nil {
		return nil, err
	}
	return map[string]any{"data": rows, "totalItems": len(rows)}, nil
}
