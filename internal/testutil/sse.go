package testutil

import (
	"encoding/json"
	"strings"
	"testing"
)

// ParseSSE decodes an SSE response body into its event payloads, one decoded
// JSON object per "data:" frame, in wire order.
func ParseSSE(t *testing.T, body string) []map[string]any {
	t.Helper()

	var events []map[string]any
	for _, frame := range strings.Split(body, "\n\n") {
		frame = strings.TrimSpace(frame)
		if frame == "" {
			continue
		}
		data, ok := strings.CutPrefix(frame, "data: ")
		if !ok {
			t.Fatalf("frame missing data prefix: %q", frame)
		}
		var ev map[string]any
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			t.Fatalf("decoding frame %q: %v", data, err)
		}
		events = append(events, ev)
	}
	return events
}

// EventTypes projects the type field of each parsed event.
func EventTypes(events []map[string]any) []string {
	types := make([]string, len(events))
	for i, ev := range events {
		types[i], _ = ev["type"].(string)
	}
	return types
}
