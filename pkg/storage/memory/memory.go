// Package memory provides a tenant scope provider with no external
// storage. The scope is purely a context binding; it exists so agent
// key validation runs under the same scoped-acquisition discipline in
// single-node deployments as it does with a database behind it.
package memory

import (
	"context"

	"github.com/mcpgate/mcpgate/pkg/auth"
	"github.com/mcpgate/mcpgate/pkg/observability"
	"github.com/mcpgate/mcpgate/pkg/storage"
)

// Scoper binds tenant scopes onto request contexts. It implements
// auth.TenantScoper and holds no per-scope resources beyond the
// active-scope gauge.
type Scoper struct{}

var _ auth.TenantScoper = (*Scoper)(nil)

// NewScoper creates an in-memory scope provider.
func NewScoper() *Scoper {
	return &Scoper{}
}

// WithTenantScope binds projectID onto the context. The release
// function must be called exactly once when the scope ends.
func (s *Scoper) WithTenantScope(ctx context.Context, projectID string) (context.Context, func(), error) {
	observability.TenantScopesActive.Inc()
	release := func() {
		observability.TenantScopesActive.Dec()
	}
	return storage.SetTenant(ctx, projectID), release, nil
}
