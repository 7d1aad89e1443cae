package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/sellerscope/sellerscope/internal/log"
)

// Registry holds the registered tools. Registration happens once at startup;
// afterwards the registry is read-only and safe for concurrent use.
type Registry struct {
	handlers map[string]*handler
	order    []string
	logger   log.Logger
}

type handler struct {
	def Definition
	run func(ctx context.Context, args json.RawMessage, ec ExecContext) (any, error)
}

// NewRegistry creates an empty registry.
func NewRegistry(logger log.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]*handler),
		logger:   logger,
	}
}

// Register adds a typed tool handler under name. The input schema is derived
// from In at registration time, so a malformed input type fails startup rather
// than the first call.
func Register[In any](r *Registry, name, description string, fn func(ctx context.Context, in In, ec ExecContext) (any, error)) error {
	if name == "" {
		return fmt.Errorf("tool name is required")
	}
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}

	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return fmt.Errorf("deriving schema for %q: %w", name, err)
	}

	r.handlers[name] = &handler{
		def: Definition{Name: name, Description: description, Parameters: schema},
		run: func(ctx context.Context, args json.RawMessage, ec ExecContext) (any, error) {
			var in In
			if len(args) > 0 {
				if err := json.Unmarshal(args, &in); err != nil {
					return nil, fmt.Errorf("invalid arguments: %w", err)
				}
			}
			return fn(ctx, in, ec)
		},
	}
	r.order = append(r.order, name)
	return nil
}

// Definitions returns every registered tool in registration order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.handlers[name].def)
	}
	return defs
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	return len(r.handlers)
}
