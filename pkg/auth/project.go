package auth

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrMalformedProjectID indicates the request URL does not address a
// valid project. This is always a client error, never a server fault.
var ErrMalformedProjectID = errors.New("missing or malformed project ID in URL")

// mcpPathPrefix is the leading path segment of project-scoped routes.
const mcpPathPrefix = "mcp"

// ResolveProjectID determines the target project UUID for a request.
// The router-bound path parameter is preferred when non-empty; otherwise
// the literal URL path is parsed as /mcp/{uuid}[/...]. The returned
// value is the canonical UUID string form.
func ResolveProjectID(pathParam, urlPath string) (string, error) {
	raw := pathParam
	if raw == "" {
		segments := strings.Split(strings.TrimPrefix(urlPath, "/"), "/")
		if len(segments) < 2 || segments[0] != mcpPathPrefix {
			return "", ErrMalformedProjectID
		}
		raw = segments[1]
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return "", ErrMalformedProjectID
	}
	return id.String(), nil
}
