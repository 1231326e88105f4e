// Package postgres provides the PostgreSQL-backed tenant scope
// provider, agent key store, and audit sink. It uses pgx/v5 for
// connection pooling; a tenant scope pins a dedicated connection with
// the project bound as the app.project_id setting so row-level
// security policies can key off it.
package postgres

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcpgate/mcpgate/pkg/auth"
	"github.com/mcpgate/mcpgate/pkg/debug"
	"github.com/mcpgate/mcpgate/pkg/observability"
	"github.com/mcpgate/mcpgate/pkg/storage"
)

// auditTimeout bounds the background insert of a single audit event.
const auditTimeout = 5 * time.Second

// Store is the PostgreSQL backend.
type Store struct {
	pool *pgxpool.Pool
}

// Compile-time interface checks.
var (
	_ auth.TenantScoper = (*Store)(nil)
	_ auth.KeyValidator = (*Store)(nil)
	_ auth.AuditLogger  = (*Store)(nil)
)

// scopedConnKey is a private type for the pinned-connection context key.
type scopedConnKey struct{}

// New creates a store with the given configuration. If MigrateOnStart
// is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// WithTenantScope acquires a dedicated connection from the pool and
// binds projectID onto it as the app.project_id setting. The returned
// context carries both the tenant binding and the pinned connection;
// release resets the setting and returns the connection to the pool.
// release must be called exactly once.
func (s *Store) WithTenantScope(ctx context.Context, projectID string) (context.Context, func(), error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("acquiring connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT set_config('app.project_id', $1, false)", projectID); err != nil {
		conn.Release()
		return nil, nil, fmt.Errorf("binding tenant scope: %w", err)
	}

	observability.TenantScopesActive.Inc()
	debug.Log("storage", "tenant scope acquired", "project_id", projectID)

	scoped := storage.SetTenant(ctx, projectID)
	scoped = context.WithValue(scoped, scopedConnKey{}, conn)

	release := func() {
		// Reset the setting so a pooled connection never leaks a
		// tenant binding to its next user. The request context may
		// already be canceled here, so use a fresh one.
		if _, err := conn.Exec(context.Background(), "RESET app.project_id"); err != nil {
			slog.Warn("resetting tenant scope", "project_id", projectID, "error", err)
		}
		conn.Release()
		observability.TenantScopesActive.Dec()
	}

	return scoped, release, nil
}

// ValidateKey reports whether key is provisioned for projectID. It must
// be called with a context produced by WithTenantScope for the same
// project; the lookup runs on the pinned, tenant-bound connection.
func (s *Store) ValidateKey(ctx context.Context, projectID, key string) (bool, error) {
	if tenant := storage.GetTenant(ctx); tenant != projectID {
		return false, storage.ErrScopeMismatch
	}

	conn, ok := ctx.Value(scopedConnKey{}).(*pgxpool.Conn)
	if !ok {
		return false, storage.ErrScopeMismatch
	}

	keyHash := sha256.Sum256([]byte(key))

	var exists bool
	err := conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM agent_keys WHERE project_id = $1 AND key_hash = $2)",
		projectID, keyHash[:],
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("querying agent key: %w", err)
	}

	return exists, nil
}

// StoreAgentKey provisions a key for a project. The plaintext is hashed
// before it reaches the database.
func (s *Store) StoreAgentKey(ctx context.Context, projectID, key, label string) error {
	keyHash := sha256.Sum256([]byte(key))

	_, err := s.pool.Exec(ctx,
		"INSERT INTO agent_keys (project_id, key_hash, label) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
		projectID, keyHash[:], label,
	)
	if err != nil {
		return fmt.Errorf("storing agent key: %w", err)
	}
	return nil
}

// RecordAuthFailure writes an audit row in the background. It never
// blocks the response it accompanies; insert failures are logged and
// dropped.
func (s *Store) RecordAuthFailure(projectID, subject, reason, clientAddr string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()

		_, err := s.pool.Exec(ctx,
			"INSERT INTO auth_audit (project_id, subject, reason, client_addr) VALUES ($1, $2, $3, $4)",
			projectID, subject, reason, clientAddr,
		)
		if err != nil {
			slog.Warn("recording auth failure", "project_id", projectID, "reason", reason, "error", err)
		}
	}()
}
