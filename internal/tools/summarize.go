package tools

import (
	"fmt"
	"strings"
)

// Summarize renders a short human-readable preview of a tool result for
// progress events: row count plus a dollar total when a recognized monetary
// column is present.
func Summarize(result Result) string {
	if !result.Success {
		return "Error occurred"
	}

	data, ok := result.Data.(map[string]any)
	if !ok {
		if result.Data == nil {
			return "Complete"
		}
		return "Data retrieved"
	}

	if rows, ok := data["data"].([]map[string]any); ok {
		return summarizeRows(rows)
	}
	if items, ok := data["totalItems"].(int); ok {
		return fmt.Sprintf("%d items", items)
	}
	return "Data retrieved"
}

func summarizeRows(rows []map[string]any) string {
	if len(rows) == 0 {
		return "No data found"
	}

	for _, key := range []string{"total_sales", "totalSales"} {
		if _, present := rows[0][key]; !present {
			continue
		}
		var total float64
		for _, row := range rows {
			total += asFloat(row[key])
		}
		return fmt.Sprintf("%d records, $%s total", len(rows), formatMoney(total))
	}
	return fmt.Sprintf("%d records found", len(rows))
}

// formatMoney renders a float with two decimals and thousands separators.
func formatMoney(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var out strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(ch)
	}

	if neg {
		return "-" + out.String() + frac
	}
	return out.String() + frac
}
