package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sellerscope/sellerscope/internal/log"
)

func TestPoolRequiresDatabase(t *testing.T) {
	m := NewManager(func(db string) string { return "postgres://localhost/" + db }, log.NewNop())
	defer m.Close()

	_, err := m.Pool(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoTenant)
}

func TestPoolRejectsBadDSN(t *testing.T) {
	m := NewManager(func(string) string { return "://not-a-dsn" }, log.NewNop())
	defer m.Close()

	_, err := m.Pool(context.Background(), "acme")
	assert.Error(t, err)
	assert.Empty(t, m.Databases())
}

func TestDatabaseContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, DatabaseFromContext(ctx))

	ctx = WithDatabase(ctx, "tenant_acme")
	assert.Equal(t, "tenant_acme", DatabaseFromContext(ctx))
}
