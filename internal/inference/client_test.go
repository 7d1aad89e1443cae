package inference

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sellerscope/sellerscope/internal/log"
)

func newTestClient(baseURL string) *Client {
	return New(baseURL, "test-model", 5*time.Second, log.NewNop())
}

func TestCompleteReturnsLastMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"partial"}}`+"\n")
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"final answer"}}`+"\n")
		fmt.Fprint(w, `{"done":true}`+"\n")
	}))
	defer srv.Close()

	msg, err := newTestClient(srv.URL).Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "final answer", msg.Content)
}

func TestCompleteAttachesTools(t *testing.T) {
	var gotBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(buf)
		gotBody.Store(string(buf))
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"ok"},"done":true}`+"\n")
	}))
	defer srv.Close()

	tools := []Tool{{Type: "function", Function: ToolFunction{Name: "get_sales_data", Description: "sales", Parameters: map[string]any{"type": "object"}}}}
	_, err := newTestClient(srv.URL).Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, tools)
	require.NoError(t, err)

	body, _ := gotBody.Load().(string)
	assert.Contains(t, body, `"tool_choice":"auto"`)
	assert.Contains(t, body, `"get_sales_data"`)
}

func TestCompleteNoMessageFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "garbage\nmore garbage\n")
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestCompleteUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model 'missing' not found"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	require.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "not found")
}

func TestStreamYieldsFramesInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for _, chunk := range []string{"The", " answer", " is 42"} {
			fmt.Fprintf(w, `{"message":{"role":"assistant","content":"%s"}}`+"\n", chunk)
			flusher.Flush()
		}
		fmt.Fprint(w, `{"done":true}`+"\n")
	}))
	defer srv.Close()

	var contents []string
	var doneSeen int
	for frame, err := range newTestClient(srv.URL).Stream(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil) {
		require.NoError(t, err)
		if frame.Done {
			doneSeen++
			continue
		}
		contents = append(contents, frame.Message.Content)
	}

	assert.Equal(t, []string{"The", " answer", " is 42"}, contents)
	assert.Equal(t, 1, doneSeen, "terminal sentinel must surface exactly once")
}

func TestStreamNoValidFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "junk\n")
	}))
	defer srv.Close()

	var sawErr error
	for _, err := range newTestClient(srv.URL).Stream(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil) {
		if err != nil {
			sawErr = err
		}
	}
	assert.ErrorIs(t, sawErr, ErrProtocol)
}

func TestStreamEarlyBreakReleasesGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := range 100 {
			fmt.Fprintf(w, `{"message":{"role":"assistant","content":"chunk %d"}}`+"\n", i)
			flusher.Flush()
		}
		fmt.Fprint(w, `{"done":true}`+"\n")
	}))

	client := newTestClient(srv.URL)
	count := 0
	for frame, err := range client.Stream(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil) {
		require.NoError(t, err)
		require.NotNil(t, frame)
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)

	client.http.CloseIdleConnections()
	srv.Close()
}

// refusingTransport simulates connection refusal for selected hosts and
// records every attempted host.
type refusingTransport struct {
	refuse map[string]bool
	hosts  []string
	inner  http.RoundTripper
}

func (rt *refusingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.hosts = append(rt.hosts, req.URL.Hostname())
	if rt.refuse[req.URL.Hostname()] {
		return nil, &url.Error{
			Op:  "Post",
			URL: req.URL.String(),
			Err: &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)},
		}
	}
	return rt.inner.RoundTrip(req)
}

func TestLocalhostRefusedRetriesLoopbackOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"ok"},"done":true}`+"\n")
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	client := newTestClient("http://localhost:" + u.Port())
	rt := &refusingTransport{refuse: map[string]bool{"localhost": true}, inner: http.DefaultTransport}
	client.http.Transport = rt

	msg, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", msg.Content)
	assert.Equal(t, []string{"localhost", "127.0.0.1"}, rt.hosts)
}

func TestLoopbackRefusedTooSurfacesError(t *testing.T) {
	client := newTestClient("http://localhost:11434")
	rt := &refusingTransport{refuse: map[string]bool{"localhost": true, "127.0.0.1": true}, inner: http.DefaultTransport}
	client.http.Transport = rt

	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	require.Error(t, err)
	// Exactly one retry: localhost, then 127.0.0.1, then stop.
	assert.Equal(t, []string{"localhost", "127.0.0.1"}, rt.hosts)
}

func TestNonLocalhostRefusedNotRetried(t *testing.T) {
	client := newTestClient("http://10.0.0.9:11434")
	rt := &refusingTransport{refuse: map[string]bool{"10.0.0.9": true}, inner: http.DefaultTransport}
	client.http.Transport = rt

	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	require.Error(t, err)
	assert.Equal(t, []string{"10.0.0.9"}, rt.hosts)
}

func TestLoopbackAlternate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"http://localhost:11434", "http://127.0.0.1:11434", true},
		{"http://localhost", "http://127.0.0.1", true},
		{"http://127.0.0.1:11434", "", false},
		{"http://inference.internal:11434", "", false},
	}
	for _, tt := range tests {
		got, ok := loopbackAlternate(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		fmt.Fprint(w, `{"models":[{"name":"qwen2.5:32b-instruct"},{"name":"llama3.1:8b"}]}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	models, err := client.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "qwen2.5:32b-instruct", models[0].Name)
	assert.True(t, client.Healthy(context.Background()))
}

func TestTimeoutSurfacesErrTimeout(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	client := New(srv.URL, "test-model", 50*time.Millisecond, log.NewNop())
	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	assert.ErrorIs(t, err, ErrTimeout)
}
