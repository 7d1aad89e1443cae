package testutil

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is an in-memory Querier: it records every query and replays the same
// canned result set.
type DB struct {
	Columns []string
	Rows    [][]any
	Err     error

	mu      sync.Mutex
	queries []Query
}

// Query is one recorded statement with its positional arguments.
type Query struct {
	SQL  string
	Args []any
}

func (db *DB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.mu.Lock()
	db.queries = append(db.queries, Query{SQL: sql, Args: args})
	db.mu.Unlock()

	if db.Err != nil {
		return nil, db.Err
	}
	return &rows{columns: db.Columns, rows: db.Rows}, nil
}

// Queries returns the recorded statements in arrival order.
func (db *DB) Queries() []Query {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]Query, len(db.queries))
	copy(out, db.queries)
	return out
}

// rows implements pgx.Rows over in-memory values.
type rows struct {
	columns []string
	rows    [][]any
	pos     int
}

func (r *rows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *rows) Values() ([]any, error) {
	return r.rows[r.pos-1], nil
}

func (r *rows) FieldDescriptions() []pgconn.FieldDescription {
	fields := make([]pgconn.FieldDescription, len(r.columns))
	for i, name := range r.columns {
		fields[i] = pgconn.FieldDescription{Name: name}
	}
	return fields
}

func (r *rows) Close()                        {}
func (r *rows) Err() error                    { return nil }
func (r *rows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *rows) Scan(_ ...any) error           { return nil }
func (r *rows) RawValues() [][]byte           { return nil }
func (r *rows) Conn() *pgx.Conn               { return nil }
