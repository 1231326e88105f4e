package storage

import "context"

// tenantKey is a private type for the tenant context key, preventing
// collisions with other packages.
type tenantKey struct{}

// SetTenant injects a project identifier into the context.
func SetTenant(ctx context.Context, projectID string) context.Context {
	return context.WithValue(ctx, tenantKey{}, projectID)
}

// GetTenant extracts the project identifier from the context.
// Returns an empty string if no tenant scope is bound.
func GetTenant(ctx context.Context) string {
	if v, ok := ctx.Value(tenantKey{}).(string); ok {
		return v
	}
	return ""
}
