// Package sse provides Server-Sent Events encoding for streaming responses.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Encoder writes JSON events to an SSE response. Every event is stamped with
// a monotonically increasing id and an RFC 3339 timestamp before being framed
// as one "data:" block.
type Encoder struct {
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int64
	now     func() time.Time
}

// NewEncoder creates an encoder and sets the SSE response headers. A writer
// without http.Flusher support still works; events are just delivered at the
// transport's own pace.
func NewEncoder(w http.ResponseWriter) *Encoder {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("X-Accel-Buffering", "no") // disable nginx buffering

	flusher, _ := w.(http.Flusher)
	return &Encoder{w: w, flusher: flusher, now: time.Now}
}

// Send marshals event as a JSON object, injects the id and timestamp fields,
// and writes one SSE frame, flushing immediately when possible.
func (e *Encoder) Send(event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return fmt.Errorf("event must marshal to a JSON object: %w", err)
	}

	e.nextID++
	fields["id"] = e.nextID
	fields["timestamp"] = e.now().UTC().Format(time.RFC3339)

	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}
