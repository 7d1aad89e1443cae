package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/sellerscope/sellerscope/internal/agent"
	"github.com/sellerscope/sellerscope/internal/inference"
	"github.com/sellerscope/sellerscope/internal/log"
	"github.com/sellerscope/sellerscope/internal/sse"
	"github.com/sellerscope/sellerscope/internal/tenant"
	"github.com/sellerscope/sellerscope/internal/tools"
)

// Agent is the turn surface consumed by the HTTP handlers.
type Agent interface {
	ChatStream(ctx context.Context, req agent.Request, emit agent.EmitFunc)
	Query(ctx context.Context, req agent.Request) (*agent.QueryResponse, error)
}

// Upstream is the slice of the inference client the handlers need.
type Upstream interface {
	Models(ctx context.Context) ([]inference.ModelInfo, error)
	Healthy(ctx context.Context) bool
	Model() string
}

// agentHandler serves the query, stream, tools and models endpoints.
type agentHandler struct {
	agent    Agent
	registry *tools.Registry
	upstream Upstream
	logger   log.Logger
}

// chatBody is the request payload for both the query and stream endpoints.
// The user identity and tenant database never come from the body; the auth
// middleware supplies them.
type chatBody struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

func (h *agentHandler) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/agent/query", h.query)
	mux.HandleFunc("POST /api/v1/agent/chat/stream", h.stream)
	mux.HandleFunc("GET /api/v1/agent/tools", h.tools)
	mux.HandleFunc("GET /api/v1/agent/models", h.models)
}

// query runs one non-streaming turn.
func (h *agentHandler) query(w http.ResponseWriter, r *http.Request) {
	req, ok := h.turnRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.agent.Query(r.Context(), req)
	if err != nil {
		h.logger.Error("query turn failed", "error", err, "user", req.UserID)
		writeError(w, http.StatusBadGateway, "query_failed", "failed to process query", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}

// stream runs one streaming turn over SSE. The orchestrator owns the event
// protocol; this handler just frames whatever it emits.
func (h *agentHandler) stream(w http.ResponseWriter, r *http.Request) {
	req, ok := h.turnRequest(w, r)
	if !ok {
		return
	}

	enc := sse.NewEncoder(w)
	h.agent.ChatStream(r.Context(), req, func(ev agent.StreamEvent) {
		if err := enc.Send(ev); err != nil {
			h.logger.Debug("dropping stream event", "error", err, "type", ev.Type)
		}
	})
}

// toolEntry is the catalogue wire shape for one registered tool.
type toolEntry struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// tools returns the registered tool catalogue.
func (h *agentHandler) tools(w http.ResponseWriter, _ *http.Request) {
	defs := h.registry.Definitions()
	entries := make([]toolEntry, len(defs))
	for i, def := range defs {
		entries[i] = toolEntry{Name: def.Name, Description: def.Description, Parameters: def.Parameters}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tools": entries,
		"count": len(entries),
	}, h.logger)
}

// models returns the upstream model listing and the configured active model.
func (h *agentHandler) models(w http.ResponseWriter, r *http.Request) {
	models, err := h.upstream.Models(r.Context())
	if err != nil {
		h.logger.Error("listing upstream models failed", "error", err)
		writeError(w, http.StatusBadGateway, "upstream_unavailable", "failed to list models", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"models": models,
		"active": h.upstream.Model(),
	}, h.logger)
}

// turnRequest decodes the body and assembles the turn request from it plus
// the authenticated context. Writes the error response itself on failure.
func (h *agentHandler) turnRequest(w http.ResponseWriter, r *http.Request) (agent.Request, bool) {
	userID, ok := userIDFromContext(r.Context())
	if !ok || userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "user identity required", h.logger)
		return agent.Request{}, false
	}

	var body chatBody
	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return agent.Request{}, false
	}
	if body.Message == "" {
		writeError(w, http.StatusBadRequest, "missing_message", "message is required", h.logger)
		return agent.Request{}, false
	}

	return agent.Request{
		Message:   body.Message,
		SessionID: body.SessionID,
		UserID:    userID,
		Database:  tenant.DatabaseFromContext(r.Context()),
	}, true
}
