package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Dispatch executes a single tool call and always returns a Result. An
// unknown tool, bad arguments, a handler error, or a handler panic all become
// a failed Result so the model can see what went wrong and adjust.
func (r *Registry) Dispatch(ctx context.Context, call Call, ec ExecContext) Result {
	emitter := EmitterFromContext(ctx)
	if emitter != nil {
		emitter.OnToolStart(call.Name)
	}

	result := r.execute(ctx, call, ec)

	if emitter != nil {
		if result.Success {
			emitter.OnToolComplete(call.Name, result)
		} else {
			emitter.OnToolError(call.Name, fmt.Errorf("%s", result.Error))
		}
	}
	return result
}

// DispatchAll runs every call concurrently and waits for all of them.
// Results are paired positionally with calls, one result per call, regardless
// of how many fail.
func (r *Registry) DispatchAll(ctx context.Context, calls []Call, ec ExecContext) []Result {
	results := make([]Result, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.Dispatch(ctx, call, ec)
		}()
	}
	wg.Wait()
	return results
}

func (r *Registry) execute(ctx context.Context, call Call, ec ExecContext) (result Result) {
	result = Result{ToolCallID: call.ID, Name: call.Name}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool handler panicked", "tool", call.Name, "panic", rec)
			result.Success = false
			result.Data = nil
			result.Error = fmt.Sprintf("internal error in %s", call.Name)
		}
	}()

	h, ok := r.handlers[call.Name]
	if !ok {
		result.Error = fmt.Sprintf("unknown tool: %s", call.Name)
		return result
	}

	args, err := normalizeArguments(call.Arguments)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	data, err := h.run(ctx, args, ec)
	if err != nil {
		r.logger.Warn("tool execution failed", "tool", call.Name, "error", err)
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Data = data
	return result
}

// normalizeArguments accepts tool arguments either as a JSON object or as a
// JSON string containing an encoded object, which some models produce.
func normalizeArguments(raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		trimmed = bytes.TrimSpace([]byte(inner))
		if len(trimmed) == 0 {
			return nil, nil
		}
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("invalid arguments: not valid JSON")
	}
	return json.RawMessage(trimmed), nil
}
