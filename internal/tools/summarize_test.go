package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{
			name:   "failed result",
			result: Result{Success: false, Error: "boom"},
			want:   "Error occurred",
		},
		{
			name: "rows with total_sales",
			result: Result{Success: true, Data: map[string]any{
				"data": []map[string]any{
					{"sku": "A", "total_sales": 1200.5},
					{"sku": "B", "total_sales": 99.5},
				},
			}},
			want: "2 records, $1,300.00 total",
		},
		{
			name: "rows with camelCase totalSales",
			result: Result{Success: true, Data: map[string]any{
				"data": []map[string]any{{"state": "CA", "totalSales": 42.0}},
			}},
			want: "1 records, $42.00 total",
		},
		{
			name: "rows without a money column",
			result: Result{Success: true, Data: map[string]any{
				"data": []map[string]any{{"sku": "A"}, {"sku": "B"}, {"sku": "C"}},
			}},
			want: "3 records found",
		},
		{
			name:   "empty rows",
			result: Result{Success: true, Data: map[string]any{"data": []map[string]any{}}},
			want:   "No data found",
		},
		{
			name:   "object with totalItems only",
			result: Result{Success: true, Data: map[string]any{"totalItems": 7}},
			want:   "7 items",
		},
		{
			name:   "opaque object",
			result: Result{Success: true, Data: map[string]any{"totals": map[string]float64{"cm3": 1}}},
			want:   "Data retrieved",
		},
		{
			name:   "scalar data",
			result: Result{Success: true, Data: "done"},
			want:   "Data retrieved",
		},
		{
			name:   "nil data",
			result: Result{Success: true},
			want:   "Complete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.result))
		})
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{42, "42.00"},
		{999.999, "1,000.00"},
		{1234567.89, "1,234,567.89"},
		{-5400.5, "-5,400.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(tt.in))
	}
}
