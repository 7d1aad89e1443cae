package tools

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB records the queries it receives and replays canned rows.
type fakeDB struct {
	queries []recordedQuery
	columns []string
	rows    [][]any
	err     error
}

type recordedQuery struct {
	sql  string
	args []any
}

func (db *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.queries = append(db.queries, recordedQuery{sql: sql, args: args})
	if db.err != nil {
		return nil, db.err
	}
	return &fakeRows{columns: db.columns, rows: db.rows}, nil
}

func (db *fakeDB) lastQuery() recordedQuery {
	return db.queries[len(db.queries)-1]
}

// fakeRows implements pgx.Rows over in-memory values.
type fakeRows struct {
	columns []string
	rows    [][]any
	pos     int
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.pos-1], nil
}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fields := make([]pgconn.FieldDescription, len(r.columns))
	for i, name := range r.columns {
		fields[i] = pgconn.FieldDescription{Name: name}
	}
	return fields
}

func (r *fakeRows) Close()                       {}
func (r *fakeRows) Err() error                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) Scan(_ ...any) error          { return nil }
func (r *fakeRows) RawValues() [][]byte          { return nil }
func (r *fakeRows) Conn() *pgx.Conn              { return nil }

// fixedNow is the reference clock used across tool tests: January 7th, 2026.
func fixedNow() time.Time {
	return time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC)
}

func testExec(db *fakeDB) ExecContext {
	return ExecContext{DB: db, Now: fixedNow}
}
