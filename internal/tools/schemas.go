package tools

// SalesInput defines input for the get_sales_data tool.
type SalesInput struct {
	FilterType  string `json:"filterType,omitempty" jsonschema:"Date filter: currentmonth, previousmonth, currentyear, or lastyear"`
	SKU         string `json:"sku,omitempty" jsonschema:"Filter by SKU (comma-separated for multiple)"`
	ProductName string `json:"productName,omitempty" jsonschema:"Filter by product name (partial match)"`
	Category    string `json:"category,omitempty" jsonschema:"Filter by product category"`
	City        string `json:"city,omitempty" jsonschema:"Filter by city"`
	State       string `json:"state,omitempty" jsonschema:"Filter by state"`
	Country     string `json:"country,omitempty" jsonschema:"Filter by country"`
	Platform    string `json:"platform,omitempty" jsonschema:"Filter by sales platform"`
	StartDate   string `json:"startDate,omitempty" jsonschema:"Custom start date (YYYY-MM-DD), use with endDate"`
	EndDate     string `json:"endDate,omitempty" jsonschema:"Custom end date (YYYY-MM-DD), use with startDate"`
}

// RegionalSalesInput defines input for the get_regional_sales tool.
type RegionalSalesInput struct {
	FilterType      string `json:"filterType,omitempty" jsonschema:"Date filter: currentmonth, previousmonth, currentyear, or lastyear"`
	SKU             string `json:"sku,omitempty" jsonschema:"Filter by SKU (comma-separated for multiple)"`
	ProductCategory string `json:"productCategory,omitempty" jsonschema:"Filter by product category"`
	State           string `json:"state,omitempty" jsonschema:"Filter by state"`
	City            string `json:"city,omitempty" jsonschema:"Filter by city"`
	Country         string `json:"country,omitempty" jsonschema:"Filter by country"`
	Platform        string `json:"platform,omitempty" jsonschema:"Filter by sales platform"`
}

// OrdersInput defines input for the get_orders_data tool.
type OrdersInput struct {
	FilterType string `json:"filterType,omitempty" jsonschema:"Date filter: currentmonth, previousmonth, currentyear, or lastyear"`
	SKU        string `json:"sku,omitempty" jsonschema:"Filter by SKU (comma-separated for multiple)"`
	Platform   string `json:"platform,omitempty" jsonschema:"Filter by sales platform"`
	State      string `json:"state,omitempty" jsonschema:"Filter by state"`
	City       string `json:"city,omitempty" jsonschema:"Filter by city"`
	Country    string `json:"country,omitempty" jsonschema:"Filter by country"`
	StartMonth string `json:"startMonth,omitempty" jsonschema:"Custom range start month (MM-YYYY), use with endMonth"`
	EndMonth   string `json:"endMonth,omitempty" jsonschema:"Custom range end month (MM-YYYY), use with startMonth"`
}

// InventoryInput defines input for the get_inventory_data tool.
type InventoryInput struct {
	SKU      string `json:"sku,omitempty" jsonschema:"Filter by SKU (partial match)"`
	Category string `json:"category,omitempty" jsonschema:"Filter by product category (partial match)"`
	Product  string `json:"product,omitempty" jsonschema:"Filter by product name (partial match)"`
	Country  string `json:"country,omitempty" jsonschema:"Filter by country (partial match)"`
	Platform string `json:"platform,omitempty" jsonschema:"Filter by platform (partial match)"`
}

// StockLevelInput defines input for the overstock, understock, and
// out-of-stock inventory tools.
type StockLevelInput struct {
	Country  string `json:"country,omitempty" jsonschema:"Filter by country (partial match)"`
	Platform string `json:"platform,omitempty" jsonschema:"Filter by platform (partial match)"`
}

// PnLInput defines input for the get_pnl_data and get_pnl_executive tools.
type PnLInput struct {
	Range       string `json:"range,omitempty" jsonschema:"Date filter: currentmonth, previousmonth, currentyear, lastyear, or customrange"`
	SKU         string `json:"sku,omitempty" jsonschema:"Filter by exact SKU"`
	Category    string `json:"category,omitempty" jsonschema:"Filter by product category"`
	ProductName string `json:"productName,omitempty" jsonschema:"Filter by exact product name"`
	Country     string `json:"country,omitempty" jsonschema:"Filter by country"`
	Platform    string `json:"platform,omitempty" jsonschema:"Filter by platform"`
	StartMonth  string `json:"startMonth,omitempty" jsonschema:"Custom range start month (MM-YYYY), requires range=customrange"`
	EndMonth    string `json:"endMonth,omitempty" jsonschema:"Custom range end month (MM-YYYY), requires range=customrange"`
	CM3Type     string `json:"cm3Type,omitempty" jsonschema:"Filter by contribution margin: gainer (cm3 >= 0) or drainer (cm3 < 0)"`
}

// AdSpendInput defines input for the get_ad_sales_spend tool.
type AdSpendInput struct {
	FilterType string `json:"filterType,omitempty" jsonschema:"Date filter: currentmonth, previousmonth, currentyear, or lastyear"`
	Platform   string `json:"platform,omitempty" jsonschema:"Filter by exact platform"`
	Country    string `json:"country,omitempty" jsonschema:"Filter by country (partial match)"`
	SKU        string `json:"sku,omitempty" jsonschema:"Filter by exact SKU"`
	StartMonth string `json:"startMonth,omitempty" jsonschema:"Custom range start month (MM-YYYY), use with endMonth"`
	EndMonth   string `json:"endMonth,omitempty" jsonschema:"Custom range end month (MM-YYYY), use with startMonth"`
}
