// Package inference implements the client for the upstream text-generation
// service (Ollama-compatible chat API with function calling).
//
// The upstream always frames /api/chat responses as newline-delimited JSON
// objects, streaming or not. Complete reads every frame and returns the last
// message; Stream yields frames incrementally through a bounded channel so the
// consumer pulls with natural backpressure.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"time"

	"github.com/sellerscope/sellerscope/internal/log"
)

// DefaultTimeout bounds every upstream request, including the full read of a
// streamed body. There is no automatic retry on timeout.
const DefaultTimeout = 120 * time.Second

// streamBuffer is the capacity of the frame channel between the decoding
// goroutine and the consumer.
const streamBuffer = 32

// Client talks to the upstream inference service.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
	logger  log.Logger
}

// New creates a client for the service at baseURL using the given model.
// A non-positive timeout falls back to DefaultTimeout.
func New(baseURL, model string, timeout time.Duration, logger log.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Complete performs a non-streaming chat call and returns the last frame
// carrying a message. Tool definitions are attached when tools is non-empty.
func (c *Client) Complete(ctx context.Context, messages []Message, tools []Tool) (*Message, error) {
	resp, err := c.send(ctx, c.newRequest(messages, tools, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var last *Message
	dec := newFrameDecoder(resp.Body, c.logger)
	for {
		frame, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if isTimeout(err) {
				return nil, fmt.Errorf("%w: reading response", ErrTimeout)
			}
			return nil, fmt.Errorf("reading response: %w", err)
		}
		if frame.Message != nil {
			last = frame.Message
		}
	}

	if last == nil {
		return nil, fmt.Errorf("%w: no message frame in response", ErrProtocol)
	}
	return last, nil
}

// Stream performs a streaming chat call and yields each decoded frame in
// order. The sequence is finite and not restartable: it ends after the
// done-sentinel frame, an error, or consumer break. A decoding goroutine
// pushes frames into a bounded channel; the consumer pulls at its own pace.
func (c *Client) Stream(ctx context.Context, messages []Message, tools []Tool) iter.Seq2[*ChatResponse, error] {
	return func(yield func(*ChatResponse, error) bool) {
		resp, err := c.send(ctx, c.newRequest(messages, tools, true))
		if err != nil {
			yield(nil, err)
			return
		}
		defer resp.Body.Close()

		type item struct {
			frame *ChatResponse
			err   error
		}

		frames := make(chan item, streamBuffer)
		stop := make(chan struct{})
		defer close(stop)

		go func() {
			defer close(frames)
			dec := newFrameDecoder(resp.Body, c.logger)
			for {
				frame, err := dec.Next()
				if err == io.EOF {
					return
				}
				select {
				case frames <- item{frame: frame, err: err}:
					if err != nil {
						return
					}
				case <-stop:
					return
				}
			}
		}()

		seen := false
		for it := range frames {
			if it.err != nil {
				if isTimeout(it.err) {
					yield(nil, fmt.Errorf("%w: reading stream", ErrTimeout))
				} else {
					yield(nil, fmt.Errorf("reading stream: %w", it.err))
				}
				return
			}
			seen = true
			if !yield(it.frame, nil) {
				return
			}
			if it.frame.Done {
				// Terminal sentinel delivered exactly once.
				return
			}
		}

		if !seen {
			yield(nil, fmt.Errorf("%w: stream produced no valid frame", ErrProtocol))
		}
	}
}

// Models lists the models available upstream.
func (c *Client) Models(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: listing models", ErrTimeout)
		}
		return nil, fmt.Errorf("listing models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("%w: decoding model list: %v", ErrProtocol, err)
	}
	return tags.Models, nil
}

// Healthy reports whether the upstream service answers the tag listing.
func (c *Client) Healthy(ctx context.Context) bool {
	_, err := c.Models(ctx)
	return err == nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) newRequest(messages []Message, tools []Tool, stream bool) chatRequest {
	req := chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   stream,
	}
	if len(tools) > 0 {
		req.Tools = tools
		req.ToolChoice = "auto"
	}
	return req
}

// send posts the chat request. A refused connection to a "localhost" URL is
// retried exactly once against the numeric loopback address; any other host,
// and any other failure, surfaces directly.
func (c *Client) send(ctx context.Context, payload chatRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	resp, err := c.post(ctx, c.baseURL, body)
	if err != nil {
		if alt, ok := loopbackAlternate(c.baseURL); ok && isRefused(err) {
			c.logger.Warn("connection refused on localhost, retrying loopback", "url", alt)
			resp, err = c.post(ctx, alt, body)
		}
	}
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("contacting upstream: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeUpstreamError(resp)
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, baseURL string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

// loopbackAlternate rewrites a localhost base URL to the numeric loopback
// address. Returns false for every other host.
func loopbackAlternate(baseURL string) (string, bool) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() != "localhost" {
		return "", false
	}
	host := "127.0.0.1"
	if port := u.Port(); port != "" {
		host += ":" + port
	}
	u.Host = host
	return u.String(), true
}

// decodeUpstreamError turns a non-success response into an error, preferring
// the upstream's own error message when the body carries one.
func decodeUpstreamError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body errorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return fmt.Errorf("%w: %s (status %d)", ErrUpstream, body.Error, resp.StatusCode)
	}
	return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, bytes.TrimSpace(raw))
}
