package tenant

import (
	"context"
)

// databaseKey is an unexported context key for zero-allocation type safety.
type databaseKey struct{}

// WithDatabase stores the tenant database name in ctx. The auth middleware
// injects it from the token claims.
func WithDatabase(ctx context.Context, database string) context.Context {
	return context.WithValue(ctx, databaseKey{}, database)
}

// DatabaseFromContext retrieves the tenant database name, or "" if unset.
func DatabaseFromContext(ctx context.Context) string {
	database, _ := ctx.Value(databaseKey{}).(string)
	return database
}
