// Package tenant manages per-tenant PostgreSQL connection pools. Each
// authenticated user belongs to one tenant database, named in their token
// claims; pools are opened lazily on first use and cached for the process
// lifetime.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sellerscope/sellerscope/internal/log"
)

// ErrNoTenant indicates a request reached a tenant-scoped operation without a
// tenant database in its context.
var ErrNoTenant = errors.New("no tenant database in request")

// DSNFunc builds the connection string for a tenant database name.
type DSNFunc func(database string) string

// Manager caches one connection pool per tenant database.
type Manager struct {
	dsn    DSNFunc
	logger log.Logger

	mu    sync.RWMutex
	pools map[string]*pgxpool.Pool
}

// NewManager creates a pool manager. dsn maps a tenant database name to its
// full connection string.
func NewManager(dsn DSNFunc, logger log.Logger) *Manager {
	return &Manager{
		dsn:    dsn,
		logger: logger,
		pools:  make(map[string]*pgxpool.Pool),
	}
}

// Pool returns the pool for the named tenant database, opening it on first
// use. The pool is verified with a ping before it is cached.
func (m *Manager) Pool(ctx context.Context, database string) (*pgxpool.Pool, error) {
	if database == "" {
		return nil, ErrNoTenant
	}

	m.mu.RLock()
	pool, ok := m.pools[database]
	m.mu.RUnlock()
	if ok {
		return pool, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another request may have opened the pool while we waited for the lock.
	if pool, ok := m.pools[database]; ok {
		return pool, nil
	}

	pool, err := m.open(ctx, database)
	if err != nil {
		return nil, err
	}
	m.pools[database] = pool
	m.logger.Info("opened tenant pool", "database", database)
	return pool, nil
}

func (m *Manager) open(ctx context.Context, database string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(m.dsn(database))
	if err != nil {
		return nil, fmt.Errorf("parsing connection config for %q: %w", database, err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating pool for %q: %w", database, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging %q: %w", database, err)
	}
	return pool, nil
}

// Databases returns the names of the currently opened tenant pools.
func (m *Manager) Databases() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.pools))
	for name := range m.pools {
		names = append(names, name)
	}
	return names
}

// Close releases every cached pool.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, pool := range m.pools {
		pool.Close()
		delete(m.pools, name)
	}
}
