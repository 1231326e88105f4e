// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the mcpgate gateway.
package observability

import "github.com/prometheus/client_golang/prometheus"

// GatewayBuckets defines histogram buckets suited for auth-gated MCP
// requests, ranging from 1ms to 30s (streaming tool calls can be slow).
var GatewayBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcpgate_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mcpgate_request_duration_seconds",
			Help:    "Request duration",
			Buckets: GatewayBuckets,
		},
		[]string{"method"},
	)

	// AuthAttemptsTotal counts terminal authentication outcomes by the
	// credential kind presented ("bearer" or "agent_key") and outcome
	// ("ok" or the RFC 6750 error code written).
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcpgate_auth_attempts_total",
			Help: "Authentication outcomes",
		},
		[]string{"credential", "outcome"},
	)

	// AuthFailuresTotal counts audited (credential-class) failures by reason.
	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcpgate_auth_failures_total",
			Help: "Audited authentication failures",
		},
		[]string{"reason"},
	)

	// TenantScopesActive tracks tenant scopes currently held open.
	TenantScopesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mcpgate_tenant_scopes_active",
			Help: "Active tenant scopes",
		},
	)

	// StreamingConnections tracks active SSE streaming connections.
	StreamingConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mcpgate_streaming_connections_active",
			Help: "Active streaming connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthAttemptsTotal,
		AuthFailuresTotal,
		TenantScopesActive,
		StreamingConnections,
	)
}
