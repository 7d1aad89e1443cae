package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sellerscope/sellerscope/internal/inference"
	"github.com/sellerscope/sellerscope/internal/session"
	"github.com/sellerscope/sellerscope/internal/tools"
)

// QueryResponse is the non-streaming turn result.
type QueryResponse struct {
	Success   bool            `json:"success"`
	Response  string          `json:"response"`
	Data      any             `json:"data"`
	ToolCalls []QueryToolCall `json:"toolCalls,omitempty"`
}

// QueryToolCall names one invoked tool and its resolved parameters.
type QueryToolCall struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// Query runs one non-streaming turn: analysis with tool definitions,
// concurrent dispatch of any requested tools, then a follow-up completion
// over the tool results.
func (o *Orchestrator) Query(ctx context.Context, req Request) (*QueryResponse, error) {
	messages := []inference.Message{
		{Role: "system", Content: systemPrompt(o.now())},
		{Role: "user", Content: req.Message},
	}

	analysis, err := o.client.Complete(ctx, messages, o.toolDefinitions())
	if err != nil {
		return nil, fmt.Errorf("initial analysis: %w", err)
	}

	if len(analysis.ToolCalls) == 0 {
		return &QueryResponse{
			Success:  true,
			Response: analysis.Content,
		}, nil
	}

	results := o.runTools(ctx, req, analysis.ToolCalls, func(StreamEvent) {})

	final := make([]inference.Message, 0, len(messages)+1+len(results))
	final = append(final, messages...)
	final = append(final, *analysis)
	for _, r := range results {
		final = append(final, inference.Message{
			Role:       session.RoleTool,
			Name:       r.Name,
			ToolCallID: r.ToolCallID,
			Content:    toolResultContent(r),
		})
	}

	answer, err := o.client.Complete(ctx, final, nil)
	if err != nil {
		return nil, fmt.Errorf("final generation: %w", err)
	}

	toolCalls := make([]QueryToolCall, len(analysis.ToolCalls))
	for i, tc := range analysis.ToolCalls {
		toolCalls[i] = QueryToolCall{
			Name:       tc.Function.Name,
			Parameters: parseArguments(tc.Function.Arguments),
		}
	}

	return &QueryResponse{
		Success:   true,
		Response:  answer.Content,
		Data:      extractData(results),
		ToolCalls: toolCalls,
	}, nil
}

// extractData flattens tool payloads for the response body: one result
// unwraps to its payload, several stay a list.
func extractData(results []tools.Result) any {
	payloads := make([]any, len(results))
	for i, r := range results {
		var payload any
		if err := json.Unmarshal([]byte(toolResultContent(r)), &payload); err != nil {
			payload = map[string]any{"error": r.Error}
		}
		payloads[i] = payload
	}
	if len(payloads) == 1 {
		return payloads[0]
	}
	return payloads
}
