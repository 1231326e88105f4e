// Package config provides unified configuration for the mcpgate gateway.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (MCPGATE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the mcpgate gateway.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Storage       StorageConfig       `yaml:"storage"`
	MCP           MCPConfig           `yaml:"mcp"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 120s
}

// AuthConfig holds authentication settings for the project gate.
type AuthConfig struct {
	JWT       JWTConfig        `yaml:"jwt"`
	AgentKeys []AgentKeyConfig `yaml:"agent_keys"` // static keys, used with storage.type=memory
	Audit     string           `yaml:"audit"`      // "slog", "postgres", or "none", default: "slog"
}

// JWTConfig holds bearer token validation settings.
type JWTConfig struct {
	Issuer       string        `yaml:"issuer"`        // required
	Audience     string        `yaml:"audience"`      // required
	JWKSURL      string        `yaml:"jwks_url"`      // required
	ProjectClaim string        `yaml:"project_claim"` // default: "project_id"
	CacheTTL     time.Duration `yaml:"cache_ttl"`     // JWKS cache TTL, default: 1h
}

// AgentKeyConfig describes a single provisioned agent key.
type AgentKeyConfig struct {
	ProjectID string `yaml:"project_id"`
	Key       string `yaml:"key"`
	KeyFile   string `yaml:"key_file"` // _file variant for key
}

// StorageConfig holds tenant scope and key store settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// MCPConfig holds settings for the MCP endpoint served behind the gate.
type MCPConfig struct {
	ServerName    string `yaml:"server_name"`    // default: "mcpgate"
	ServerVersion string `yaml:"server_version"` // default: "dev"
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LoggingConfig holds log level and debug category settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // ERROR, WARN, INFO, DEBUG, TRACE; default: "INFO"
	Debug string `yaml:"debug"` // comma-separated debug categories
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Auth: AuthConfig{
			JWT: JWTConfig{
				ProjectClaim: "project_id",
				CacheTTL:     time.Hour,
			},
			Audit: "slog",
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		MCP: MCPConfig{
			ServerName:    "mcpgate",
			ServerVersion: "dev",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}
