package auth

import (
	"context"
	"errors"
	"net/http"
)

// SubjectAgent is the synthetic subject assigned to identities
// authenticated via an agent API key. It is never produced by the
// bearer token path.
const SubjectAgent = "agent"

// SubjectUnknown is the audit placeholder used when a failure occurs
// before any principal could be established.
const SubjectUnknown = "unknown"

// Identity represents an authenticated caller for the duration of one
// request. It is either produced by the identity service from verified
// token claims, or synthesized by the agent key path.
type Identity struct {
	// Subject is the unique identifier of the principal (required).
	Subject string

	// ProjectID is the project the principal is scoped to, as a
	// canonical UUID string.
	ProjectID string

	// Scopes lists the authorization scopes granted by the token.
	// Empty for agent key identities.
	Scopes []string

	// Metadata carries identity-provider-specific claims.
	Metadata map[string]string
}

// Sentinel errors returned by TokenValidator implementations.
var (
	// ErrNoToken indicates the request carried no bearer token.
	ErrNoToken = errors.New("no bearer token in request")

	// ErrMissingProjectScope indicates a verified token without a
	// project binding.
	ErrMissingProjectScope = errors.New("token missing required project scope")

	// ErrProjectMismatch indicates the token's project does not match
	// the project addressed by the URL.
	ErrProjectMismatch = errors.New("token project does not match requested project")
)

// TokenValidator verifies bearer tokens and enforces project claims.
// Implementations own signature, expiry, and issuer checks; the
// middleware only sequences the calls.
type TokenValidator interface {
	// ValidateRequest extracts and verifies the bearer token from the
	// request. On success it returns the verified identity and the raw
	// token string.
	ValidateRequest(r *http.Request) (*Identity, string, error)

	// RequireProjectScope fails when the identity carries no project
	// binding.
	RequireProjectScope(id *Identity) error

	// ValidateProjectMatch fails when the identity's project differs
	// from urlProjectID.
	ValidateProjectMatch(id *Identity, urlProjectID string) error
}

// KeyValidator checks an agent API key against one project. The context
// passed in is the tenant-scoped context produced by a TenantScoper, so
// implementations backed by shared storage can rely on the scope being
// bound. A false return with nil error means the key was examined and
// rejected; a non-nil error means the check itself could not run.
type KeyValidator interface {
	ValidateKey(ctx context.Context, projectID, key string) (bool, error)
}

// TenantScoper acquires a project-bound execution context. The returned
// release function must be called exactly once when the scope is no
// longer needed; the middleware guarantees this on every exit path.
type TenantScoper interface {
	WithTenantScope(ctx context.Context, projectID string) (context.Context, func(), error)
}
