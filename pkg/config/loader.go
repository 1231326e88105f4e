package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, MCPGATE_CONFIG env, ./config.yaml, /etc/mcpgate/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. MCPGATE_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/mcpgate/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	// Check MCPGATE_CONFIG env var.
	if envPath := os.Getenv("MCPGATE_CONFIG"); envPath != "" {
		return envPath
	}

	// Check common locations.
	candidates := []string{
		"config.yaml",
		"/etc/mcpgate/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MCPGATE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MCPGATE_JWT_ISSUER"); v != "" {
		cfg.Auth.JWT.Issuer = v
	}
	if v := os.Getenv("MCPGATE_JWT_AUDIENCE"); v != "" {
		cfg.Auth.JWT.Audience = v
	}
	if v := os.Getenv("MCPGATE_JWKS_URL"); v != "" {
		cfg.Auth.JWT.JWKSURL = v
	}
	if v := os.Getenv("MCPGATE_JWT_PROJECT_CLAIM"); v != "" {
		cfg.Auth.JWT.ProjectClaim = v
	}
	if v := os.Getenv("MCPGATE_JWKS_CACHE_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.Auth.JWT.CacheTTL = ttl
		}
	}
	if v := os.Getenv("MCPGATE_AUDIT"); v != "" {
		cfg.Auth.Audit = v
	}
	if v := os.Getenv("MCPGATE_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("MCPGATE_POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}

	// MCPGATE_AGENT_KEYS: JSON array of agent key configs.
	if v := os.Getenv("MCPGATE_AGENT_KEYS"); v != "" {
		keys, err := parseAgentKeysJSON(v)
		if err == nil && len(keys) > 0 {
			cfg.Auth.AgentKeys = keys
		}
	}
}

// parseAgentKeysJSON parses a JSON array of agent key configurations.
func parseAgentKeysJSON(jsonStr string) ([]AgentKeyConfig, error) {
	var keys []AgentKeyConfig
	if err := json.Unmarshal([]byte(jsonStr), &keys); err != nil {
		return nil, fmt.Errorf("parsing agent keys JSON: %w", err)
	}
	return keys, nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// storage.postgres.dsn_file -> storage.postgres.dsn
	if cfg.Storage.Postgres.DSNFile != "" && cfg.Storage.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = val
	}

	// auth.agent_keys[*].key_file -> auth.agent_keys[*].key
	for i := range cfg.Auth.AgentKeys {
		if cfg.Auth.AgentKeys[i].KeyFile != "" && cfg.Auth.AgentKeys[i].Key == "" {
			val, err := readSecretFile(cfg.Auth.AgentKeys[i].KeyFile)
			if err != nil {
				return fmt.Errorf("auth.agent_keys[%d].key_file: %w", i, err)
			}
			cfg.Auth.AgentKeys[i].Key = val
		}
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
