// Package server assembles the gateway: it builds the auth gate from
// configuration, mounts the MCP endpoint behind it, and wires the HTTP
// middleware chain, health, and metrics endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcpgate/mcpgate/pkg/auth"
	"github.com/mcpgate/mcpgate/pkg/auth/apikey"
	"github.com/mcpgate/mcpgate/pkg/auth/jwt"
	"github.com/mcpgate/mcpgate/pkg/config"
	"github.com/mcpgate/mcpgate/pkg/mcpserver"
	"github.com/mcpgate/mcpgate/pkg/observability"
	"github.com/mcpgate/mcpgate/pkg/storage/memory"
	"github.com/mcpgate/mcpgate/pkg/storage/postgres"
	"github.com/mcpgate/mcpgate/pkg/transport"
)

// projectPathParam is the router path parameter holding the project ID.
const projectPathParam = "project"

// Server is the assembled gateway.
type Server struct {
	cfg     *config.Config
	handler http.Handler
	pg      *postgres.Store
}

// New builds the gateway from configuration. The returned server owns
// the storage backend; call Close when done.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	s := &Server{cfg: cfg}

	tokens := jwt.New(jwt.Config{
		Issuer:       cfg.Auth.JWT.Issuer,
		Audience:     cfg.Auth.JWT.Audience,
		JWKSURL:      cfg.Auth.JWT.JWKSURL,
		ProjectClaim: cfg.Auth.JWT.ProjectClaim,
		CacheTTL:     cfg.Auth.JWT.CacheTTL,
	})

	var (
		keys   auth.KeyValidator
		scopes auth.TenantScoper
	)

	switch cfg.Storage.Type {
	case "postgres":
		pg, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("creating postgres store: %w", err)
		}
		s.pg = pg
		keys = pg
		scopes = pg
		slog.Info("storage enabled", "type", "postgres")

	case "memory":
		scopes = memory.NewScoper()
		if len(cfg.Auth.AgentKeys) > 0 {
			entries := make([]apikey.Entry, 0, len(cfg.Auth.AgentKeys))
			for _, k := range cfg.Auth.AgentKeys {
				entries = append(entries, apikey.Entry{ProjectID: k.ProjectID, Key: k.Key})
			}
			keys = apikey.New(entries)
		}
		slog.Info("storage enabled", "type", "memory", "agent_keys", len(cfg.Auth.AgentKeys))

	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}

	audit, err := s.buildAudit()
	if err != nil {
		s.Close()
		return nil, err
	}

	gate := auth.NewMiddleware(tokens, keys, scopes, audit)
	s.handler = buildHandler(cfg, gate)

	return s, nil
}

// buildAudit selects the audit sink from configuration.
func (s *Server) buildAudit() (auth.AuditLogger, error) {
	switch s.cfg.Auth.Audit {
	case "postgres":
		if s.pg == nil {
			return nil, fmt.Errorf("audit type \"postgres\" requires postgres storage")
		}
		return s.pg, nil
	case "slog":
		return &auth.SlogAuditLogger{Logger: slog.Default()}, nil
	case "none":
		return auth.NopAuditLogger{}, nil
	default:
		return nil, fmt.Errorf("unknown audit type %q", s.cfg.Auth.Audit)
	}
}

// buildHandler mounts the MCP endpoint behind the gate and wraps the
// mux with the middleware chain.
func buildHandler(cfg *config.Config, gate *auth.Middleware) http.Handler {
	mcpHandler := mcpserver.NewHandler(mcpserver.Config{
		Name:    cfg.MCP.ServerName,
		Version: cfg.MCP.ServerVersion,
	})
	gated := gate.RequireProjectAuth(projectPathParam)(mcpHandler)

	mux := http.NewServeMux()
	mux.Handle("/mcp/{project}", gated)
	mux.Handle("/mcp/{project}/{rest...}", gated)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	chain := transport.Chain(
		transport.Recovery(nil),
		transport.RequestID(),
		transport.Logging(nil),
		observability.MetricsMiddleware,
	)
	return chain(mux)
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close releases the storage backend.
func (s *Server) Close() {
	if s.pg != nil {
		s.pg.Close()
	}
}
