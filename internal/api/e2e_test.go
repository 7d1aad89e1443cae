package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerscope/sellerscope/internal/agent"
	"github.com/sellerscope/sellerscope/internal/inference"
	"github.com/sellerscope/sellerscope/internal/log"
	"github.com/sellerscope/sellerscope/internal/session"
	"github.com/sellerscope/sellerscope/internal/testutil"
	"github.com/sellerscope/sellerscope/internal/tools"
)

// staticPools hands every tenant the same Querier.
type staticPools struct {
	db  tools.Querier
	err error
}

func (p staticPools) Pool(context.Context, string) (tools.Querier, error) {
	return p.db, p.err
}

type e2eEnv struct {
	server   *Server
	store    *session.MemoryStore
	upstream *testutil.Upstream
	db       *testutil.DB
}

// newE2EEnv wires the real client, registry, store and orchestrator against
// a scripted upstream and an in-memory Querier.
func newE2EEnv(t *testing.T, db *testutil.DB, turns ...testutil.Turn) *e2eEnv {
	t.Helper()

	logger := log.NewNop()
	up := testutil.NewUpstream(t, turns...)
	client := inference.New(up.URL(), "test-model", 0, logger)

	registry, err := tools.NewDefaultRegistry(logger)
	require.NoError(t, err)

	store := session.NewMemoryStore()
	orch := agent.New(store, client, registry, staticPools{db: db}, logger)

	server, err := NewServer(ServerConfig{
		Logger:       logger,
		Agent:        orch,
		Registry:     registry,
		Upstream:     client,
		SessionStore: store,
		JWTSecret:    testSecret,
	})
	require.NoError(t, err)

	return &e2eEnv{server: server, store: store, upstream: up, db: db}
}

func (e *e2eEnv) streamTurn(t *testing.T, message string) []map[string]any {
	t.Helper()

	token := signToken(t, testSecret, "user-1", "tenant_a")
	r := httptest.NewRequest(http.MethodPost, "/api/v1/agent/chat/stream",
		strings.NewReader(`{"message":`+mustJSON(t, message)+`}`))
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	return testutil.ParseSSE(t, w.Body.String())
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func salesToolTurn() testutil.Turn {
	return testutil.Turn{Message: inference.Message{
		Role: "assistant",
		ToolCalls: []inference.ToolCall{{
			ID: "call_1",
			Function: inference.FunctionCall{
				Name:      "get_sales_data",
				Arguments: json.RawMessage(`{"filterType":"previousmonth"}`),
			},
		}},
	}}
}

func TestStreamTurnEndToEnd(t *testing.T) {
	db := &testutil.DB{
		Columns: []string{"order_id", "total_sales"},
		Rows:    [][]any{{"A1", 120.0}, {"A2", 80.0}},
	}
	env := newE2EEnv(t, db,
		salesToolTurn(),
		testutil.Turn{Chunks: []string{"December sales ", "looked solid."}},
	)

	events := env.streamTurn(t, "show me sales for last month")

	require.Equal(t,
		[]string{"session", "start", "tool", "tool", "thinking", "chunk", "chunk", "end"},
		testutil.EventTypes(events))

	done := events[3]
	assert.Equal(t, "done", done["status"])
	assert.Equal(t, "2 records, $200.00 total", done["preview"])

	end := events[7]
	assert.Equal(t, true, end["complete"])
	sessionID, _ := end["sessionId"].(string)
	require.NotEmpty(t, sessionID)

	// One sales query reached the data source.
	require.Len(t, db.Queries(), 1)
	assert.Contains(t, db.Queries()[0].SQL, "std_orders")

	// Two messages persisted; the assistant turn carries the tool call.
	sess, err := env.store.Get(sessionID)
	require.NoError(t, err)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, session.RoleUser, sess.Messages[0].Role)
	assistant := sess.Messages[1]
	assert.Equal(t, "December sales looked solid.", assistant.Content)
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "get_sales_data", assistant.ToolCalls[0].Name)
	assert.Equal(t, "previousmonth", assistant.ToolCalls[0].Arguments["filterType"])

	// Analysis call carried the tool catalogue; the final call did not.
	reqs := env.upstream.Requests()
	require.Len(t, reqs, 2)
	assert.NotEmpty(t, reqs[0].Tools)
	assert.False(t, reqs[0].Stream)
	assert.Empty(t, reqs[1].Tools)
	assert.True(t, reqs[1].Stream)

	// The tool result was folded into the final context as a tool-role message.
	last := reqs[1].Messages[len(reqs[1].Messages)-1]
	assert.Equal(t, "tool", last.Role)
	assert.Equal(t, "get_sales_data", last.Name)
	assert.Contains(t, last.Content, `"success":true`)
}

func TestStreamTurnBenignToolFailureStillEnds(t *testing.T) {
	db := &testutil.DB{Err: assert.AnError}
	env := newE2EEnv(t, db,
		salesToolTurn(),
		testutil.Turn{Chunks: []string{"No data was available."}},
	)

	events := env.streamTurn(t, "show me sales for last month")
	types := testutil.EventTypes(events)

	require.Equal(t, "end", types[len(types)-1])
	assert.NotContains(t, types, "error")

	var statuses []string
	for _, ev := range events {
		if ev["type"] == "tool" {
			statuses = append(statuses, ev["status"].(string))
		}
	}
	assert.Equal(t, []string{"running", "error"}, statuses)
}

func TestStreamTurnWithoutToolsEmitsNoToolEvents(t *testing.T) {
	env := newE2EEnv(t, &testutil.DB{},
		testutil.Turn{Message: inference.Message{Role: "assistant", Content: "Happy to help."}},
		testutil.Turn{Chunks: []string{"What would you like to know?"}},
	)

	events := env.streamTurn(t, "hello")

	require.Equal(t,
		[]string{"session", "start", "thinking", "chunk", "end"},
		testutil.EventTypes(events))
	assert.Empty(t, env.db.Queries())
}
