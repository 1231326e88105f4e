// Package auth provides the per-request authentication gate for
// project-scoped MCP routes (/mcp/{project-id}).
//
// Two credential kinds are accepted: JWT bearer tokens validated by an
// external identity service, and long-lived agent API keys bound to a
// single project. Inbound headers are classified into an explicit
// credential variant, the matching path handler runs, and the
// authenticated principal's project is checked against the project ID
// in the URL. Every failure is answered with an RFC 6750 Bearer
// challenge; credential-class failures are additionally reported to an
// optional audit logger.
//
// The package consumes its collaborators (token validation, key
// validation, tenant scope acquisition, audit) through interfaces and
// holds no cross-request state.
package auth
