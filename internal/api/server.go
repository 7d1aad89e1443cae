// Package api exposes the HTTP surface: the agent turn endpoints, the chat
// session CRUD, and the tool and model catalogues, behind a middleware stack
// of recovery, request ids, logging, CORS, per-IP rate limiting and JWT auth.
package api

import (
	"errors"
	"net/http"

	"github.com/sellerscope/sellerscope/internal/log"
	"github.com/sellerscope/sellerscope/internal/session"
	"github.com/sellerscope/sellerscope/internal/tools"
)

// DefaultRateBurst is the per-IP burst allowance when ServerConfig leaves
// RateBurst zero. Refill is fixed at one token per second.
const DefaultRateBurst = 60

// ServerConfig carries the server's collaborators and HTTP policy knobs.
type ServerConfig struct {
	Logger       log.Logger
	Agent        Agent           // Required
	Registry     *tools.Registry // Required
	Upstream     Upstream        // Required
	SessionStore session.Store   // Required
	JWTSecret    []byte          // Required: 32+ bytes
	CORSOrigins  []string        // Allowed origins for CORS
	TrustProxy   bool            // Trust X-Real-IP/X-Forwarded-For headers (behind reverse proxy)
	RateBurst    int             // Rate limiter burst size per IP (0 = default 60)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Agent == nil {
		return nil, errors.New("agent is required")
	}
	if cfg.Registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if cfg.Upstream == nil {
		return nil, errors.New("upstream client is required")
	}
	if cfg.SessionStore == nil {
		return nil, errors.New("session store is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT secret must be at least 32 bytes")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = DefaultRateBurst
	}
	throttle := newIPThrottle(1.0, burst)

	mux := http.NewServeMux()

	ah := &agentHandler{agent: cfg.Agent, registry: cfg.Registry, upstream: cfg.Upstream, logger: logger}
	ah.registerRoutes(mux)

	sh := &sessionHandler{store: cfg.SessionStore, logger: logger}
	sh.registerRoutes(mux)

	// Middleware stack, innermost first.
	var handler http.Handler = mux
	handler = authMiddleware(cfg.JWTSecret, logger)(handler)
	handler = rateLimitMiddleware(throttle, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Top-level mux separates health probes from the middleware stack.
	topMux := http.NewServeMux()
	topMux.Handle("GET /health", healthHandler(cfg.Upstream, logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
