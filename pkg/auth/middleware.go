package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mcpgate/mcpgate/pkg/debug"
	"github.com/mcpgate/mcpgate/pkg/observability"
	"github.com/mcpgate/mcpgate/pkg/storage"
)

// Metric labels for the credential kind that reached a terminal state.
const (
	credLabelBearer   = "bearer"
	credLabelAgentKey = "agent_key"
)

// Middleware is the per-request authentication gate. It holds no
// mutable state; all fields are set at construction and read-only
// afterwards.
type Middleware struct {
	tokens TokenValidator
	keys   KeyValidator
	scopes TenantScoper
	audit  AuditLogger
	logger *slog.Logger
}

// NewMiddleware creates the gate. tokens is required; keys and scopes
// may be nil when no agent keys are provisioned, in which case API key
// credentials are answered with server_error. A nil audit logger is
// replaced with a no-op.
func NewMiddleware(tokens TokenValidator, keys KeyValidator, scopes TenantScoper, audit AuditLogger) *Middleware {
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &Middleware{
		tokens: tokens,
		keys:   keys,
		scopes: scopes,
		audit:  audit,
		logger: slog.Default(),
	}
}

// RequireProjectAuth returns middleware enforcing that the caller is
// authenticated for the project addressed by the URL. pathParam is the
// name of the router path parameter holding the project ID (the value
// read via r.PathValue).
//
// Requests carrying an API key credential take the agent key path; all
// other requests, including those with no credential at all, take the
// bearer token path and fail there when no token is present.
func (m *Middleware) RequireProjectAuth(pathParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred := ClassifyCredential(r.Header.Get("Authorization"), r.Header.Get("X-API-Key"))

			switch cred.Kind {
			case CredentialAPIKey:
				m.serveAgentKey(w, r, next, pathParam, cred.Value)
			case CredentialBearer, CredentialNone:
				m.serveBearer(w, r, next, pathParam)
			}
		})
	}
}

// serveBearer handles the JWT path. Token verification is delegated
// entirely to the identity service; this handler sequences the project
// scope and project match checks and maps failures to challenges.
func (m *Middleware) serveBearer(w http.ResponseWriter, r *http.Request, next http.Handler, pathParam string) {
	identity, token, err := m.tokens.ValidateRequest(r)
	if err != nil {
		debug.Log("auth", "bearer token rejected", "path", r.URL.Path, "error", err)
		// The principal is unknown at this point; audit against the URL
		// project when one can be recovered.
		if projectID, perr := ResolveProjectID(r.PathValue(pathParam), r.URL.Path); perr == nil {
			m.recordFailure(projectID, SubjectUnknown, ReasonInvalidToken, r.RemoteAddr)
		}
		m.reject(w, credLabelBearer, http.StatusUnauthorized, ErrorCodeInvalidToken, descTokenInvalid)
		return
	}

	if err := m.tokens.RequireProjectScope(identity); err != nil {
		debug.Log("auth", "token lacks project scope", "subject", identity.Subject)
		m.reject(w, credLabelBearer, http.StatusUnauthorized, ErrorCodeInvalidToken, descMissingProjectScope)
		return
	}

	projectID, err := ResolveProjectID(r.PathValue(pathParam), r.URL.Path)
	if err != nil {
		m.reject(w, credLabelBearer, http.StatusBadRequest, ErrorCodeInvalidRequest, descMissingProjectID)
		return
	}

	if err := m.tokens.ValidateProjectMatch(identity, projectID); err != nil {
		m.logger.Warn("project ID mismatch",
			"url_project_id", projectID,
			"token_project_id", identity.ProjectID,
			"subject", identity.Subject,
		)
		m.recordFailure(projectID, identity.Subject, ReasonProjectMismatch, r.RemoteAddr)
		m.reject(w, credLabelBearer, http.StatusForbidden, ErrorCodeInsufficientScope, descProjectMismatch)
		return
	}

	observability.AuthAttemptsTotal.WithLabelValues(credLabelBearer, "ok").Inc()

	ctx := SetIdentity(r.Context(), identity)
	ctx = SetToken(ctx, token)
	ctx = storage.SetTenant(ctx, identity.ProjectID)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// serveAgentKey handles the API key path: resolve the project, acquire
// a tenant scope for it, validate the key inside that scope, and
// synthesize the agent identity on success.
func (m *Middleware) serveAgentKey(w http.ResponseWriter, r *http.Request, next http.Handler, pathParam, key string) {
	if m.keys == nil {
		m.logger.Error("API key credential presented but no key validator is configured")
		m.reject(w, credLabelAgentKey, http.StatusInternalServerError, ErrorCodeServerError, descServerError)
		return
	}
	if m.scopes == nil {
		m.logger.Error("API key credential presented but no tenant scoper is configured")
		m.reject(w, credLabelAgentKey, http.StatusInternalServerError, ErrorCodeServerError, descServerError)
		return
	}

	projectID, err := ResolveProjectID(r.PathValue(pathParam), r.URL.Path)
	if err != nil {
		m.reject(w, credLabelAgentKey, http.StatusBadRequest, ErrorCodeInvalidRequest, descMissingProjectID)
		return
	}

	valid, err := m.validateKeyScoped(r.Context(), projectID, key)
	if err != nil {
		m.logger.Error("agent key validation failed", "project_id", projectID, "error", err)
		m.reject(w, credLabelAgentKey, http.StatusInternalServerError, ErrorCodeServerError, descServerError)
		return
	}
	if !valid {
		debug.Log("auth", "agent key rejected", "project_id", projectID)
		m.recordFailure(projectID, SubjectAgent, ReasonInvalidAPIKey, r.RemoteAddr)
		m.reject(w, credLabelAgentKey, http.StatusUnauthorized, ErrorCodeInvalidToken, descKeyInvalid)
		return
	}

	observability.AuthAttemptsTotal.WithLabelValues(credLabelAgentKey, "ok").Inc()

	// Agent credentials are not bearer tokens: no token string is
	// placed in the context.
	identity := &Identity{Subject: SubjectAgent, ProjectID: projectID}
	ctx := SetIdentity(r.Context(), identity)
	ctx = storage.SetTenant(ctx, projectID)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// validateKeyScoped acquires a tenant scope for projectID and checks
// the key within it. The deferred release fires exactly once on every
// path past acquisition, before any response is written.
func (m *Middleware) validateKeyScoped(ctx context.Context, projectID, key string) (bool, error) {
	scopedCtx, release, err := m.scopes.WithTenantScope(ctx, projectID)
	if err != nil {
		return false, fmt.Errorf("acquiring tenant scope: %w", err)
	}
	defer release()

	valid, err := m.keys.ValidateKey(scopedCtx, projectID, key)
	if err != nil {
		return false, fmt.Errorf("validating agent key: %w", err)
	}
	return valid, nil
}

// recordFailure forwards a credential-class failure to the audit sink
// and the failure counter.
func (m *Middleware) recordFailure(projectID, subject, reason, clientAddr string) {
	observability.AuthFailuresTotal.WithLabelValues(reason).Inc()
	m.audit.RecordAuthFailure(projectID, subject, reason, clientAddr)
}

// reject writes the challenge and records the terminal outcome.
func (m *Middleware) reject(w http.ResponseWriter, credential string, status int, errorCode, description string) {
	observability.AuthAttemptsTotal.WithLabelValues(credential, errorCode).Inc()
	WriteChallenge(w, status, errorCode, description)
}
