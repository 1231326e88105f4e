package auth

import "context"

// identityKey is a private type for the identity context key.
type identityKey struct{}

// tokenKey is a private type for the raw bearer token context key.
type tokenKey struct{}

// SetIdentity stores the authenticated identity in the context.
func SetIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext retrieves the authenticated identity.
// Returns nil if the request never passed the gate.
func IdentityFromContext(ctx context.Context) *Identity {
	if v, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return v
	}
	return nil
}

// SetToken stores the raw bearer token string in the context. Only the
// bearer token path produces a token; agent key credentials are never
// exposed downstream.
func SetToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext retrieves the raw bearer token, or empty string for
// agent-key-authenticated and unauthenticated requests.
func TokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(tokenKey{}).(string); ok {
		return v
	}
	return ""
}
