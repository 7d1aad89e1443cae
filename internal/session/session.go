// Package session owns conversation history: sessions keyed by id and owner,
// each holding an ordered, append-only message list.
//
// The Store interface is the injection point; the in-process MemoryStore is the
// default implementation. Deployments needing durability swap in another Store
// without touching the orchestrator.
package session

import (
	"errors"
	"time"
)

// Sentinel errors for session operations. Check with errors.Is().
var (
	// ErrNotFound indicates the requested session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrAccessDenied indicates the session belongs to a different user.
	ErrAccessDenied = errors.New("session access denied")
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Session is one conversation thread owned by a single user.
// Messages is append-only and time-ordered; UpdatedAt advances on every
// mutation.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is a single conversation entry. Immutable once appended.
type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	ToolCalls   []ToolCall   `json:"toolCalls,omitempty"`
	ToolResults []ToolResult `json:"toolResults,omitempty"`
}

// ToolCall is a function invocation proposed by the inference service.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the outcome of executing one ToolCall. Every ToolCall of a
// turn has exactly one ToolResult, successful or not.
type ToolResult struct {
	ToolCallID string `json:"toolCallId"`
	Name       string `json:"name"`
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Metadata carries optional per-message attachments recorded alongside an
// assistant turn.
type Metadata struct {
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// Store is the session repository consumed by the orchestrator and API.
//
// Mutations are atomic and arrival-ordered: implementations serialize writes
// internally. Two concurrent requests appending to the same session interleave
// in arrival order; callers needing strict per-turn ordering must serialize
// above this interface.
type Store interface {
	// Create registers a new session for userID. If id is empty a new one is
	// generated. Returns the session id.
	Create(userID, id string) string

	// Get returns the session, or ErrNotFound.
	Get(id string) (*Session, error)

	// List returns all sessions for userID, most recently updated first.
	List(userID string) []*Session

	// AddMessage appends a message. Unknown ids are a no-op returning false.
	AddMessage(id, role, content string, meta *Metadata) bool

	// UpdateTitle replaces the session title. Unknown ids return false.
	UpdateTitle(id, title string) bool

	// Delete removes a session. Unknown ids return false.
	Delete(id string) bool

	// Clear removes every session owned by userID and returns the count.
	Clear(userID string) int

	// Cleanup removes sessions idle longer than maxAge and returns the count.
	Cleanup(maxAge time.Duration) int
}
