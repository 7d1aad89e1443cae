// Package testutil provides shared test doubles: a scripted mock of the
// upstream inference service speaking its NDJSON wire protocol, an SSE frame
// parser, and an in-memory Querier.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sellerscope/sellerscope/internal/inference"
)

// Turn scripts one /api/chat exchange. Non-streaming requests get Message as
// a single frame; streaming requests get one frame per chunk. Both end with
// the done sentinel.
type Turn struct {
	Message inference.Message
	Chunks  []string
}

// ChatRequest is a decoded /api/chat request body, recorded for assertions.
type ChatRequest struct {
	Model    string              `json:"model"`
	Messages []inference.Message `json:"messages"`
	Tools    []inference.Tool    `json:"tools"`
	Stream   bool                `json:"stream"`
}

// Upstream is a mock inference server. It answers /api/tags with a single
// model and pops one scripted Turn per /api/chat call; exhausted scripts
// answer with an upstream error body.
type Upstream struct {
	Server *httptest.Server

	mu       sync.Mutex
	turns    []Turn
	requests []ChatRequest
}

// NewUpstream starts the mock server. The caller owns shutdown via t.Cleanup.
func NewUpstream(t *testing.T, turns ...Turn) *Upstream {
	t.Helper()

	u := &Upstream{turns: turns}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"models":[{"name":"test-model"}]}`)
	})
	mux.HandleFunc("POST /api/chat", u.chat)

	u.Server = httptest.NewServer(mux)
	t.Cleanup(u.Server.Close)
	return u
}

// URL returns the mock server's base URL.
func (u *Upstream) URL() string {
	return u.Server.URL
}

// Requests returns the recorded /api/chat bodies in arrival order.
func (u *Upstream) Requests() []ChatRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]ChatRequest, len(u.requests))
	copy(out, u.requests)
	return out
}

func (u *Upstream) chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, `{"error":%q}`, err.Error())
		return
	}

	u.mu.Lock()
	u.requests = append(u.requests, req)
	var turn Turn
	ok := len(u.turns) > 0
	if ok {
		turn = u.turns[0]
		u.turns = u.turns[1:]
	}
	u.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"no scripted turns left"}`)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")

	enc := json.NewEncoder(w)
	if req.Stream && len(turn.Chunks) > 0 {
		for _, chunk := range turn.Chunks {
			frame := inference.ChatResponse{
				Message: &inference.Message{Role: "assistant", Content: chunk},
			}
			if err := enc.Encode(frame); err != nil {
				return
			}
		}
	} else {
		msg := turn.Message
		if err := enc.Encode(inference.ChatResponse{Message: &msg}); err != nil {
			return
		}
	}
	_ = enc.Encode(inference.ChatResponse{Done: true})
}
