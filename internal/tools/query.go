package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// queryBuilder accumulates WHERE conditions with positional placeholders.
// Every user-supplied value goes through arg(); SQL text never interpolates
// input directly.
type queryBuilder struct {
	conds []string
	args  []any
}

// arg appends a bind value and returns its placeholder.
func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// cond appends a raw condition built from placeholders.
func (b *queryBuilder) cond(c string) {
	b.conds = append(b.conds, c)
}

// eq appends "col = $n" when value is non-empty.
func (b *queryBuilder) eq(col, value string) {
	if value != "" {
		b.cond(col + " = " + b.arg(value))
	}
}

// like appends a case-insensitive substring match when value is non-empty.
func (b *queryBuilder) like(col, value string) {
	if value != "" {
		b.cond(col + " ILIKE " + b.arg("%"+value+"%"))
	}
}

// in appends "col IN (...)" from a comma-separated value list.
func (b *queryBuilder) in(col, csv string) {
	if csv == "" {
		return
	}
	var placeholders []string
	for _, v := range strings.Split(csv, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			placeholders = append(placeholders, b.arg(v))
		}
	}
	if len(placeholders) > 0 {
		b.cond(col + " IN (" + strings.Join(placeholders, ",") + ")")
	}
}

// inList appends "col IN (...)" from pre-built values.
func (b *queryBuilder) inList(col string, values []string) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = b.arg(v)
	}
	b.cond(col + " IN (" + strings.Join(placeholders, ",") + ")")
}

// dateRange appends a half-open purchase-window condition on col.
func (b *queryBuilder) dateRange(col string, dr DateRange) {
	b.cond(col + " >= " + b.arg(dr.Start) + " AND " + col + " < " + b.arg(dr.End))
}

// where renders the accumulated conditions, or a tautology when empty.
func (b *queryBuilder) where() string {
	if len(b.conds) == 0 {
		return "1=1"
	}
	return strings.Join(b.conds, " AND ")
}

// collectRows drains rows into column-keyed maps.
func collectRows(rows pgx.Rows) ([]map[string]any, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := []map[string]any{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			row[string(fd.Name)] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

// queryMaps runs sql and collects every row.
func queryMaps(ctx context.Context, db Querier, sql string, args ...any) ([]map[string]any, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	return collectRows(rows)
}

// asFloat coerces the numeric column types pgx surfaces into float64.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}
