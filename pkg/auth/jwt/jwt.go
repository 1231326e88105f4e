// Package jwt implements the identity service consumed by the auth
// gate. Bearer tokens are verified as RSA-signed JWTs against a JWKS
// (JSON Web Key Set) endpoint, with configurable issuer, audience, and
// claim names for subject and project binding.
package jwt

import (
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/mcpgate/mcpgate/pkg/auth"
	"github.com/mcpgate/mcpgate/pkg/debug"
)

// Config holds the validator configuration.
type Config struct {
	// Issuer is the expected iss claim. If empty, issuer is not validated.
	Issuer string

	// Audience is the expected aud claim. If empty, audience is not validated.
	Audience string

	// JWKSURL is the URL to fetch the JSON Web Key Set for signature
	// verification.
	JWKSURL string

	// SubjectClaim is the claim used as the identity subject. Default: "sub".
	SubjectClaim string

	// ProjectClaim is the claim carrying the project binding. Default: "project_id".
	ProjectClaim string

	// ScopesClaim is the claim carrying authorization scopes. Default: "scope".
	// The value can be a space-separated string or a JSON array.
	ScopesClaim string

	// CacheTTL controls how long JWKS keys are cached. Default: 1 hour.
	CacheTTL time.Duration

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	// If nil, http.DefaultClient is used.
	HTTPClient *http.Client
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.SubjectClaim == "" {
		c.SubjectClaim = "sub"
	}
	if c.ProjectClaim == "" {
		c.ProjectClaim = "project_id"
	}
	if c.ScopesClaim == "" {
		c.ScopesClaim = "scope"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 1 * time.Hour
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
}

// Validator verifies JWT bearer tokens against a JWKS endpoint. It
// implements auth.TokenValidator.
type Validator struct {
	config    Config
	jwksCache *jwksCache
}

var _ auth.TokenValidator = (*Validator)(nil)

// New creates a validator with the given configuration.
func New(cfg Config) *Validator {
	cfg.applyDefaults()
	return &Validator{
		config: cfg,
		jwksCache: &jwksCache{
			keys:    make(map[string]*rsa.PublicKey),
			ttl:     cfg.CacheTTL,
			jwksURL: cfg.JWKSURL,
			client:  cfg.HTTPClient,
		},
	}
}

// ValidateRequest extracts the bearer token from the Authorization
// header and verifies it. On success it returns the identity built from
// the verified claims and the raw token string.
func (v *Validator) ValidateRequest(r *http.Request) (*auth.Identity, string, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, "", auth.ErrNoToken
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")
	if tokenStr == "" {
		return nil, "", auth.ErrNoToken
	}

	ctx := r.Context()

	token, err := jwtlib.Parse(tokenStr, func(token *jwtlib.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtlib.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, fmt.Errorf("token missing kid header")
		}

		key, fetchErr := v.jwksCache.getKey(ctx, kid)
		if fetchErr != nil {
			return nil, fmt.Errorf("fetching JWKS key for kid %q: %w", kid, fetchErr)
		}

		return key, nil
	}, v.parserOptions()...)
	if err != nil {
		debug.Log("auth", "JWT verification failed", "error", err)
		return nil, "", fmt.Errorf("invalid JWT: %w", err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok || !token.Valid {
		return nil, "", fmt.Errorf("invalid JWT claims")
	}

	subject := claimString(claims, v.config.SubjectClaim)
	if subject == "" {
		return nil, "", fmt.Errorf("JWT missing %q claim", v.config.SubjectClaim)
	}

	identity := &auth.Identity{
		Subject:   subject,
		ProjectID: claimString(claims, v.config.ProjectClaim),
		Scopes:    extractScopes(claims, v.config.ScopesClaim),
		Metadata:  make(map[string]string),
	}

	if email := claimString(claims, "email"); email != "" {
		identity.Metadata["email"] = email
	}

	return identity, tokenStr, nil
}

// RequireProjectScope fails when the verified token carried no project
// binding.
func (v *Validator) RequireProjectScope(id *auth.Identity) error {
	if id == nil || id.ProjectID == "" {
		return auth.ErrMissingProjectScope
	}
	return nil
}

// ValidateProjectMatch fails when the token's project differs from the
// project addressed by the URL.
func (v *Validator) ValidateProjectMatch(id *auth.Identity, urlProjectID string) error {
	if id == nil || id.ProjectID != urlProjectID {
		return auth.ErrProjectMismatch
	}
	return nil
}

// parserOptions builds JWT parser options based on the configuration.
func (v *Validator) parserOptions() []jwtlib.ParserOption {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
	}

	if v.config.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(v.config.Issuer))
	}

	if v.config.Audience != "" {
		opts = append(opts, jwtlib.WithAudience(v.config.Audience))
	}

	return opts
}

// claimString extracts a string value from JWT claims.
// Returns empty string if the claim is missing or not a string.
func claimString(claims jwtlib.MapClaims, key string) string {
	val, ok := claims[key]
	if !ok {
		return ""
	}
	s, ok := val.(string)
	if !ok {
		return ""
	}
	return s
}

// extractScopes extracts scopes from JWT claims.
// The scope claim can be either a space-separated string or a JSON array.
func extractScopes(claims jwtlib.MapClaims, key string) []string {
	val, ok := claims[key]
	if !ok {
		return nil
	}

	if s, ok := val.(string); ok {
		parts := strings.Fields(s)
		if len(parts) == 0 {
			return nil
		}
		return parts
	}

	if arr, ok := val.([]interface{}); ok {
		var scopes []string
		for _, item := range arr {
			if s, ok := item.(string); ok {
				scopes = append(scopes, s)
			}
		}
		if len(scopes) == 0 {
			return nil
		}
		return scopes
	}

	return nil
}
