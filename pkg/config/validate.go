package config

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// Bearer validation needs all three JWT fields or none.
	jwtSet := c.Auth.JWT.Issuer != "" || c.Auth.JWT.Audience != "" || c.Auth.JWT.JWKSURL != ""
	if jwtSet {
		if c.Auth.JWT.Issuer == "" {
			errs = append(errs, fmt.Errorf("auth.jwt.issuer is required when JWT auth is configured"))
		}
		if c.Auth.JWT.Audience == "" {
			errs = append(errs, fmt.Errorf("auth.jwt.audience is required when JWT auth is configured"))
		}
		if c.Auth.JWT.JWKSURL == "" {
			errs = append(errs, fmt.Errorf("auth.jwt.jwks_url is required when JWT auth is configured"))
		}
	}

	// auth.audit must be a known value.
	switch c.Auth.Audit {
	case "slog", "postgres", "none":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.audit must be \"slog\", \"postgres\", or \"none\", got %q", c.Auth.Audit))
	}

	// auth.audit=postgres requires postgres storage.
	if c.Auth.Audit == "postgres" && c.Storage.Type != "postgres" {
		errs = append(errs, fmt.Errorf("auth.audit \"postgres\" requires storage.type \"postgres\", got %q", c.Storage.Type))
	}

	// Agent key project IDs must be valid UUIDs.
	for i, k := range c.Auth.AgentKeys {
		if _, err := uuid.Parse(k.ProjectID); err != nil {
			errs = append(errs, fmt.Errorf("auth.agent_keys[%d].project_id must be a valid UUID, got %q", i, k.ProjectID))
		}
		if k.Key == "" && k.KeyFile == "" {
			errs = append(errs, fmt.Errorf("auth.agent_keys[%d]: key or key_file is required", i))
		}
	}

	// storage.type must be a known value.
	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	// If storage.type is "postgres", DSN or DSNFile must be set.
	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	return errors.Join(errs...)
}
