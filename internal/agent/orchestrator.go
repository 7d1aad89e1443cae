// Package agent orchestrates a chat turn: session resolution, tool-assisted
// analysis against the upstream inference service, concurrent tool dispatch,
// and streamed final generation.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sellerscope/sellerscope/internal/inference"
	"github.com/sellerscope/sellerscope/internal/log"
	"github.com/sellerscope/sellerscope/internal/session"
	"github.com/sellerscope/sellerscope/internal/tools"
)

// Client is the inference surface the orchestrator consumes.
type Client interface {
	Complete(ctx context.Context, messages []inference.Message, tools []inference.Tool) (*inference.Message, error)
	Stream(ctx context.Context, messages []inference.Message, tools []inference.Tool) iter.Seq2[*inference.ChatResponse, error]
}

// PoolProvider acquires the tenant-scoped data source for tool execution.
type PoolProvider interface {
	Pool(ctx context.Context, database string) (tools.Querier, error)
}

// Request is one chat turn. UserID and Database come from the authenticated
// request, never from the client payload.
type Request struct {
	Message   string
	SessionID string
	UserID    string
	Database  string
}

// Orchestrator drives chat turns end to end.
type Orchestrator struct {
	store    session.Store
	client   Client
	registry *tools.Registry
	pools    PoolProvider
	logger   log.Logger
	now      func() time.Time
}

// New creates an orchestrator.
func New(store session.Store, client Client, registry *tools.Registry, pools PoolProvider, logger log.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		client:   client,
		registry: registry,
		pools:    pools,
		logger:   logger,
		now:      time.Now,
	}
}

// ChatStream runs one streaming chat turn, delivering progress and content
// through emit. It always terminates the stream with exactly one of an end
// event or an error event.
func (o *Orchestrator) ChatStream(ctx context.Context, req Request, emit EmitFunc) {
	send := newSafeEmit(emit)

	if strings.TrimSpace(req.Message) == "" {
		send(StreamEvent{Type: EventError, Message: "Message is required"})
		return
	}

	// Reuse the session only when it exists and belongs to this user;
	// anything else silently mints a replacement so the turn proceeds.
	sessionID := req.SessionID
	owned := false
	if sessionID != "" {
		if sess, err := o.store.Get(sessionID); err == nil && sess.UserID == req.UserID {
			owned = true
		}
	}
	if !owned {
		sessionID = o.store.Create(req.UserID, "")
		send(StreamEvent{Type: EventSession, SessionID: sessionID})
	}

	o.store.AddMessage(sessionID, session.RoleUser, req.Message, nil)

	messages := o.conversationContext(sessionID)

	send(StreamEvent{Type: EventStart, Content: "Analyzing your Amazon data..."})

	analysis, err := o.client.Complete(ctx, messages, o.toolDefinitions())
	if err != nil {
		o.logger.Error("initial analysis failed", "error", err, "session", sessionID)
		send(StreamEvent{Type: EventError, Message: fmt.Sprintf("Failed to connect to AI: %v", err)})
		return
	}

	var results []tools.Result
	if len(analysis.ToolCalls) > 0 {
		results = o.runTools(ctx, req, analysis.ToolCalls, send)
	}

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

	send(StreamEvent{Type: EventThinking, Content: "Generating insights..."})

	full, streamErr := o.streamFinal(ctx, final, send)
	if streamErr != nil {
		o.logger.Warn("streamed generation failed, falling back", "error", streamErr, "session", sessionID)
		msg, err := o.client.Complete(ctx, final, nil)
		if err != nil {
			o.logger.Error("fallback generation failed", "error", err, "session", sessionID)
			send(StreamEvent{Type: EventError, Message: fmt.Sprintf("Failed to generate response: %v", err)})
			return
		}
		full = msg.Content
		send(StreamEvent{Type: EventChunk, Content: full})
	}

	o.store.AddMessage(sessionID, session.RoleAssistant, full, turnMetadata(analysis.ToolCalls, results))

	send(StreamEvent{
		Type:          EventEnd,
		Complete:      true,
		SessionID:     sessionID,
		MessageLength: utf8.RuneCountInString(full),
	})
}

// conversationContext builds the prompt context: system prompt plus the prior
// user and assistant messages. Tool-turn payloads are not replayed.
func (o *Orchestrator) conversationContext(sessionID string) []inference.Message {
	messages := []inference.Message{{Role: "system", Content: systemPrompt(o.now())}}

	sess, err := o.store.Get(sessionID)
	if err != nil {
		return messages
	}
	for _, msg := range sess.Messages {
		if msg.Role == session.RoleUser || msg.Role == session.RoleAssistant {
			messages = append(messages, inference.Message{Role: msg.Role, Content: msg.Content})
		}
	}
	return messages
}

// runTools fans the calls out concurrently and waits for every result.
// Data-source acquisition failure fails each call individually; the turn
// still completes with the failures folded into context.
func (o *Orchestrator) runTools(ctx context.Context, req Request, toolCalls []inference.ToolCall, send EmitFunc) []tools.Result {
	calls := make([]tools.Call, len(toolCalls))
	for i, tc := range toolCalls {
		calls[i] = tools.Call{
			ID:        callID(tc, i),
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}
	}

	emitter := &toolEventEmitter{send: send}

	pool, err := o.pools.Pool(ctx, req.Database)
	if err != nil {
		o.logger.Error("acquiring tenant data source failed", "error", err, "database", req.Database)
		results := make([]tools.Result, len(calls))
		for i, call := range calls {
			emitter.OnToolStart(call.Name)
			results[i] = tools.Result{
				ToolCallID: call.ID,
				Name:       call.Name,
				Error:      fmt.Sprintf("data source unavailable: %v", err),
			}
			emitter.OnToolError(call.Name, err)
		}
		return results
	}

	ec := tools.ExecContext{DB: pool, Now: o.now}
	return o.registry.DispatchAll(tools.ContextWithEmitter(ctx, emitter), calls, ec)
}

// streamFinal relays the streamed generation as chunk events and returns the
// accumulated text. Any stream error discards the partial text so the caller
// can retry non-streaming.
func (o *Orchestrator) streamFinal(ctx context.Context, messages []inference.Message, send EmitFunc) (string, error) {
	var full strings.Builder
	for frame, err := range o.client.Stream(ctx, messages, nil) {
		if err != nil {
			return "", err
		}
		if frame.Done {
			break
		}
		if frame.Message != nil && frame.Message.Content != "" {
			full.WriteString(frame.Message.Content)
			send(StreamEvent{Type: EventChunk, Content: frame.Message.Content})
		}
	}
	return full.String(), nil
}

func (o *Orchestrator) toolDefinitions() []inference.Tool {
	defs := o.registry.Definitions()
	out := make([]inference.Tool, len(defs))
	for i, def := range defs {
		out[i] = inference.Tool{
			Type: "function",
			Function: inference.ToolFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		}
	}
	return out
}

// toolEventEmitter forwards dispatcher lifecycle events as stream events.
// Dispatch runs handlers concurrently, so emission is serialized here.
type toolEventEmitter struct {
	mu   sync.Mutex
	send EmitFunc
}

func (e *toolEventEmitter) OnToolStart(name string) {
	e.emit(StreamEvent{Type: EventTool, Tool: name, Status: ToolRunning, Message: fmt.Sprintf("Executing %s...", name)})
}

func (e *toolEventEmitter) OnToolComplete(name string, result tools.Result) {
	e.emit(StreamEvent{Type: EventTool, Tool: name, Status: ToolDone, Preview: tools.Summarize(result)})
}

func (e *toolEventEmitter) OnToolError(name string, err error) {
	e.emit(StreamEvent{Type: EventTool, Tool: name, Status: ToolError, Message: err.Error()})
}

func (e *toolEventEmitter) emit(ev StreamEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.send(ev)
}

// newSafeEmit serializes event delivery; concurrent tool completions would
// otherwise interleave writes on the response.
func newSafeEmit(emit EmitFunc) EmitFunc {
	var mu sync.Mutex
	return func(ev StreamEvent) {
		mu.Lock()
		defer mu.Unlock()
		emit(ev)
	}
}

// toolResultContent renders a result as the tool-role message body the model
// reads back: the data payload on success, the error otherwise.
func toolResultContent(r tools.Result) string {
	var payload any
	if r.Success {
		payload = map[string]any{"success": true, "data": r.Data}
	} else {
		payload = map[string]any{"error": r.Error}
	}
	content, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(content)
}

// turnMetadata converts the turn's calls and results into session metadata.
func turnMetadata(toolCalls []inference.ToolCall, results []tools.Result) *session.Metadata {
	if len(toolCalls) == 0 {
		return nil
	}

	meta := &session.Metadata{
		ToolCalls:   make([]session.ToolCall, len(toolCalls)),
		ToolResults: make([]session.ToolResult, len(results)),
	}
	for i, tc := range toolCalls {
		meta.ToolCalls[i] = session.ToolCall{
			ID:        callID(tc, i),
			Name:      tc.Function.Name,
			Arguments: parseArguments(tc.Function.Arguments),
		}
	}
	for i, r := range results {
		meta.ToolResults[i] = session.ToolResult{
			ToolCallID: r.ToolCallID,
			Name:       r.Name,
			Success:    r.Success,
			Data:       r.Data,
			Error:      r.Error,
		}
	}
	return meta
}

// callID returns the model-assigned call id, or a positional one when the
// upstream omits ids.
func callID(tc inference.ToolCall, i int) string {
	if tc.ID != "" {
		return tc.ID
	}
	return fmt.Sprintf("call_%d", i)
}

// parseArguments decodes tool arguments for persistence, accepting both the
// object form and the string-encoded form.
func parseArguments(raw json.RawMessage) map[string]any {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return map[string]any{}
	}
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return map[string]any{}
		}
		trimmed = inner
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
		return map[string]any{}
	}
	return args
}
