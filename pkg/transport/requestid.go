package transport

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

// requestIDHeader carries the request ID on the wire in both directions.
const requestIDHeader = "X-Request-ID"

// RequestID returns middleware that assigns a unique request ID to each
// request. If the incoming request carries an X-Request-ID header, that
// value is used. Otherwise, a new unique ID is generated. The ID is
// stored in the request context and echoed on the response header.
//
// The request ID can be retrieved with RequestIDFromContext.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = generateRequestID()
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(ContextWithRequestID(r.Context(), id)))
		})
	}
}

// generateRequestID creates a new unique request ID as a hex string.
func generateRequestID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
