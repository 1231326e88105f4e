package auth

import "strings"

// CredentialKind discriminates the credential variants a request can
// carry. The switch in the middleware is exhaustive over these values.
type CredentialKind int

const (
	// CredentialNone means no recognizable credential was presented.
	CredentialNone CredentialKind = iota

	// CredentialAPIKey is a long-lived agent API key.
	CredentialAPIKey

	// CredentialBearer is a bearer token shaped like a JWT.
	CredentialBearer
)

// Credential is the classified value extracted from request headers.
// It is transient and never persisted.
type Credential struct {
	Kind  CredentialKind
	Value string
}

// apiKeyScheme is the Authorization scheme used by agent clients that
// cannot set custom headers.
const apiKeyScheme = "api-key:"

// bearerScheme is the standard RFC 6750 Authorization scheme.
const bearerScheme = "Bearer "

// ClassifyCredential inspects the Authorization and X-API-Key header
// values and returns exactly one credential variant. Classification
// order:
//
//  1. "api-key:" scheme in Authorization
//  2. non-empty X-API-Key header
//  3. "Bearer " scheme: the remainder is a JWT only when it has exactly
//     three dot-separated segments; any other shape is an opaque API key
//  4. no credential
//
// Pure function with no side effects.
func ClassifyCredential(authorization, apiKeyHeader string) Credential {
	if strings.HasPrefix(authorization, apiKeyScheme) {
		return Credential{Kind: CredentialAPIKey, Value: strings.TrimPrefix(authorization, apiKeyScheme)}
	}

	if apiKeyHeader != "" {
		return Credential{Kind: CredentialAPIKey, Value: apiKeyHeader}
	}

	if strings.HasPrefix(authorization, bearerScheme) {
		token := strings.TrimPrefix(authorization, bearerScheme)
		if len(strings.Split(token, ".")) == 3 {
			return Credential{Kind: CredentialBearer, Value: token}
		}
		// Opaque bearer values are treated as agent keys.
		return Credential{Kind: CredentialAPIKey, Value: token}
	}

	return Credential{Kind: CredentialNone}
}
