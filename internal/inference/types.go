package inference

import "encoding/json"

// Message is a chat message in the upstream wire format.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID references the originating call on tool-role messages.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// Name carries the tool name on tool-role messages.
	Name string `json:"name,omitempty"`
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the function and carries its arguments. Arguments are
// kept raw because the upstream emits either a JSON object or a JSON-encoded
// string depending on model and version.
type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Tool describes one callable function to the upstream function-calling
// feature.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction is the schema half of a tool definition. Parameters must
// marshal to a JSON-schema object.
type ToolFunction struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"`
}

// ChatResponse is one decoded frame of the upstream response. Streaming
// responses deliver many frames; the last one has Done set.
type ChatResponse struct {
	Model   string   `json:"model,omitempty"`
	Message *Message `json:"message,omitempty"`
	Done    bool     `json:"done"`
}

// chatRequest is the upstream /api/chat request body.
type chatRequest struct {
	Model      string    `json:"model"`
	Messages   []Message `json:"messages"`
	Tools      []Tool    `json:"tools,omitempty"`
	ToolChoice string    `json:"tool_choice,omitempty"`
	Stream     bool      `json:"stream"`
}

// ModelInfo describes one model reported by the upstream tag listing.
type ModelInfo struct {
	Name       string `json:"name"`
	Size       int64  `json:"size,omitempty"`
	ModifiedAt string `json:"modified_at,omitempty"`
}

// tagsResponse is the upstream /api/tags response body.
type tagsResponse struct {
	Models []ModelInfo `json:"models"`
}

// errorResponse is the upstream error body shape.
type errorResponse struct {
	Error string `json:"error"`
}
