package api

import (
	"context"
	"net/http"
	"time"

	"github.com/sellerscope/sellerscope/internal/log"
)

const healthProbeTimeout = 2 * time.Second

// healthHandler reports process liveness plus upstream reachability. It sits
// outside the middleware stack so probes bypass auth and rate limiting.
func healthHandler(upstream Upstream, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()

		body := map[string]any{
			"status":   "ok",
			"upstream": "unreachable",
		}
		if upstream.Healthy(ctx) {
			body["upstream"] = "reachable"
			body["model"] = upstream.Model()
		}
		writeJSON(w, http.StatusOK, body, logger)
	}
}
