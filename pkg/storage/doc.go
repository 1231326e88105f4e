// Package storage provides tenant scoping shared across storage
// backends: the context helpers that carry the active project binding,
// and the sentinel errors backends return when a call arrives outside
// the scope it requires.
//
// The backends (memory, postgres) implement the auth.TenantScoper and
// auth.KeyValidator interfaces defined in pkg/auth. This package
// contains only shared helpers, not the interfaces themselves.
package storage
