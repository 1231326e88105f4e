package auth

import "net/http"

// RFC 6750 error codes emitted in WWW-Authenticate challenges.
// "server_error" is not defined by the RFC; it is carried in the same
// challenge format so Bearer-aware clients see a uniform error surface
// for infrastructure faults.
const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeInvalidToken      = "invalid_token"
	ErrorCodeInsufficientScope = "insufficient_scope"
	ErrorCodeServerError       = "server_error"
)

// The fixed client-facing descriptions. Collaborator error details are
// logged server-side only and never leave the process.
const (
	descTokenInvalid        = "The access token is invalid or expired"
	descMissingProjectScope = "The access token is missing required project scope"
	descMissingProjectID    = "Missing or invalid project ID in URL"
	descProjectMismatch     = "The access token does not have access to this project"
	descKeyInvalid          = "The API key is invalid"
	descServerError         = "Authentication service unavailable"
)

// WriteChallenge writes an RFC 6750 section 3 Bearer challenge: the
// WWW-Authenticate header carrying the error code and description,
// followed by the status code. No body is written.
func WriteChallenge(w http.ResponseWriter, status int, errorCode, description string) {
	w.Header().Set("WWW-Authenticate",
		`Bearer error="`+errorCode+`", error_description="`+description+`"`)
	w.WriteHeader(status)
}
