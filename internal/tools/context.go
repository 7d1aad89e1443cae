package tools

import (
	"context"
)

// Emitter receives tool lifecycle notifications during dispatch. The
// streaming layer implements it to surface per-tool progress events; the
// non-streaming path leaves it unset and dispatch degrades silently.
type Emitter interface {
	// OnToolStart signals that the named tool began executing.
	OnToolStart(name string)

	// OnToolComplete signals that the named tool finished, successfully or
	// not. The result carries the data preview for the completion event.
	OnToolComplete(name string, result Result)

	// OnToolError signals that the named tool failed.
	OnToolError(name string, err error)
}

// emitterKey is an unexported context key for zero-allocation type safety.
type emitterKey struct{}

// ContextWithEmitter stores the emitter in ctx for the duration of a dispatch.
func ContextWithEmitter(ctx context.Context, e Emitter) context.Context {
	return context.WithValue(ctx, emitterKey{}, e)
}

// EmitterFromContext retrieves the emitter, or nil when none is bound.
func EmitterFromContext(ctx context.Context) Emitter {
	e, _ := ctx.Value(emitterKey{}).(Emitter)
	return e
}
