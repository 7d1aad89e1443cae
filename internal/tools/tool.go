// Package tools provides the data-retrieval tools the agent can invoke,
// a registry with registration-time schema generation, and a concurrent
// dispatcher that pairs every tool call with exactly one result.
package tools

import (
	"context"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/jackc/pgx/v5"
)

// Querier is the query surface tool handlers need. *pgxpool.Pool satisfies it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ExecContext carries per-request execution state into tool handlers: the
// tenant's database handle and the reference clock for date-filter resolution.
type ExecContext struct {
	DB  Querier
	Now func() time.Time
}

func (ec ExecContext) now() time.Time {
	if ec.Now != nil {
		return ec.Now()
	}
	return time.Now().UTC()
}

// Definition describes a registered tool in the upstream function-calling
// contract: name, model-facing description, and the generated input schema.
type Definition struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

// Call is a single tool invocation requested by the model.
type Call struct {
	ID        string
	Name      string
	Arguments []byte
}

// Result is the outcome of one tool call. Exactly one Result exists per Call;
// failures are carried in Error with Success false, never as a Go error.
type Result struct {
	ToolCallID string `json:"toolCallId"`
	Name       string `json:"name"`
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
}
