package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sellerscope/sellerscope/internal/agent"
	"github.com/sellerscope/sellerscope/internal/api"
	"github.com/sellerscope/sellerscope/internal/config"
	"github.com/sellerscope/sellerscope/internal/inference"
	"github.com/sellerscope/sellerscope/internal/log"
	"github.com/sellerscope/sellerscope/internal/session"
	"github.com/sellerscope/sellerscope/internal/tenant"
	"github.com/sellerscope/sellerscope/internal/tools"
)

// Server timeout configuration.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 3 * time.Minute // SSE turns can outlive the upstream timeout
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// tenantPools adapts the tenant manager to the orchestrator's provider
// surface; *pgxpool.Pool satisfies tools.Querier.
type tenantPools struct {
	manager *tenant.Manager
}

func (p *tenantPools) Pool(ctx context.Context, database string) (tools.Querier, error) {
	return p.manager.Pool(ctx, database)
}

// runServe wires the application together and runs the HTTP server plus the
// session cleanup sweeper until SIGINT/SIGTERM.
func runServe(parent context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level, JSON: true})

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting sellerscope", "version", Version, "addr", cfg.ListenAddr)

	client := inference.New(cfg.UpstreamBaseURL, cfg.Model, cfg.UpstreamTimeout, logger)
	if client.Healthy(ctx) {
		logger.Info("upstream inference service reachable", "url", cfg.UpstreamBaseURL, "model", cfg.Model)
	} else {
		logger.Warn("upstream inference service unreachable at boot", "url", cfg.UpstreamBaseURL)
	}

	manager := tenant.NewManager(cfg.TenantDSN, logger)
	defer manager.Close()

	registry, err := tools.NewDefaultRegistry(logger)
	if err != nil {
		return fmt.Errorf("building tool registry: %w", err)
	}

	store := session.NewMemoryStore()
	orchestrator := agent.New(store, client, registry, &tenantPools{manager: manager}, logger)

	apiServer, err := api.NewServer(api.ServerConfig{
		Logger:       logger,
		Agent:        orchestrator,
		Registry:     registry,
		Upstream:     client,
		SessionStore: store,
		JWTSecret:    []byte(cfg.JWTSecret),
		CORSOrigins:  cfg.CORSOrigins,
		TrustProxy:   cfg.TrustProxy,
		RateBurst:    cfg.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server ready", "addr", cfg.ListenAddr, "api", "/api/v1/*", "health", "/health")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if removed := store.Cleanup(cfg.SessionMaxAge); removed > 0 {
					logger.Info("session cleanup", "removed", removed)
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
