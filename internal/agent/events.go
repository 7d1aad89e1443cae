package agent

// Stream event types, in the order a successful turn produces them.
const (
	EventSession  = "session"
	EventStart    = "start"
	EventTool     = "tool"
	EventThinking = "thinking"
	EventChunk    = "chunk"
	EventEnd      = "end"
	EventError    = "error"
)

// Tool event statuses.
const (
	ToolRunning = "running"
	ToolDone    = "done"
	ToolError   = "error"
)

// StreamEvent is the single frame shape crossing the wire during a streaming
// turn. Type is always set; the remaining fields are populated per type and
// omitted otherwise. The SSE layer injects id and timestamp.
type StreamEvent struct {
	Type          string `json:"type"`
	Content       string `json:"content,omitempty"`
	Message       string `json:"message,omitempty"`
	SessionID     string `json:"sessionId,omitempty"`
	Tool          string `json:"tool,omitempty"`
	Status        string `json:"status,omitempty"`
	Preview       string `json:"preview,omitempty"`
	Complete      bool   `json:"complete,omitempty"`
	MessageLength int    `json:"messageLength,omitempty"`
	Details       string `json:"details,omitempty"`
}

// EmitFunc delivers one stream event to the client. The orchestrator
// serializes calls, so implementations need not be safe for concurrent use.
type EmitFunc func(StreamEvent)
