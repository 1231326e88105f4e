package auth

import "log/slog"

// Audit reasons for authentication failures. These are recorded only
// for conditions that may indicate a principal probing access it does
// not have; malformed requests and infrastructure faults are never
// audited.
const (
	ReasonInvalidToken    = "Invalid or expired token"
	ReasonProjectMismatch = "Project ID mismatch"
	ReasonInvalidAPIKey   = "Invalid API key"
)

// AuditLogger records authentication failures. Implementations must be
// best-effort: they never return an error and must not block the
// response they accompany.
type AuditLogger interface {
	RecordAuthFailure(projectID, subject, reason, clientAddr string)
}

// NopAuditLogger discards all audit events. It is the default when no
// audit sink is configured.
type NopAuditLogger struct{}

func (NopAuditLogger) RecordAuthFailure(projectID, subject, reason, clientAddr string) {}

// SlogAuditLogger writes audit events to a structured logger.
type SlogAuditLogger struct {
	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

func (l *SlogAuditLogger) RecordAuthFailure(projectID, subject, reason, clientAddr string) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("authentication failure",
		"project_id", projectID,
		"subject", subject,
		"reason", reason,
		"client_addr", clientAddr,
	)
}
