package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/sellerscope/sellerscope/internal/log"
	"github.com/sellerscope/sellerscope/internal/session"
)

// sessionHandler serves the chat session endpoints. The streaming path mints
// replacement sessions on bad ids; here the REST contract is strict instead,
// 404 for unknown ids and 403 for sessions owned by someone else.
type sessionHandler struct {
	store  session.Store
	logger log.Logger
}

// sessionSummary is the list wire shape: headers only, no message bodies.
type sessionSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	MessageCount int    `json:"messageCount"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

func (h *sessionHandler) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/agent/chat/sessions", h.list)
	mux.HandleFunc("GET /api/v1/agent/chat/sessions/{id}", h.get)
	mux.HandleFunc("DELETE /api/v1/agent/chat/sessions/{id}", h.delete)
	mux.HandleFunc("DELETE /api/v1/agent/chat/sessions", h.clear)
}

// list returns the caller's sessions, most recently updated first.
func (h *sessionHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "user identity required", h.logger)
		return
	}

	sessions := h.store.List(userID)
	summaries := make([]sessionSummary, len(sessions))
	for i, sess := range sessions {
		summaries[i] = sessionSummary{
			ID:           sess.ID,
			Title:        sess.Title,
			MessageCount: len(sess.Messages),
			CreatedAt:    sess.CreatedAt.Format(time.RFC3339),
			UpdatedAt:    sess.UpdatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": summaries,
		"count":    len(summaries),
	}, h.logger)
}

// get returns the full session history.
func (h *sessionHandler) get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess, h.logger)
}

// delete removes one session.
func (h *sessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.ownedSession(w, r)
	if !ok {
		return
	}

	h.store.Delete(sess.ID)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": sess.ID}, h.logger)
}

// clear removes every session owned by the caller.
func (h *sessionHandler) clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "user identity required", h.logger)
		return
	}

	deleted := h.store.Clear(userID)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted}, h.logger)
}

// ownedSession resolves the {id} path segment to a session owned by the
// caller, writing the error response itself when that fails.
func (h *sessionHandler) ownedSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "user identity required", h.logger)
		return nil, false
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_id", "session ID required", h.logger)
		return nil, false
	}

	sess, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "session not found", h.logger)
			return nil, false
		}
		h.logger.Error("loading session failed", "error", err, "session", id)
		writeError(w, http.StatusInternalServerError, "get_failed", "failed to load session", h.logger)
		return nil, false
	}

	if sess.UserID != userID {
		writeError(w, http.StatusForbidden, "forbidden", "session access denied", h.logger)
		return nil, false
	}
	return sess, true
}
