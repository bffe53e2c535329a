package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/plauder-dev/plauder/pkg/tools/mcp"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, PLAUDER_CONFIG env,
//     ./config.yaml, /etc/plauder/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery
// order: explicit path, PLAUDER_CONFIG env var, ./config.yaml,
// /etc/plauder/config.yaml. Returns empty when no file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("PLAUDER_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/plauder/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile parses a YAML file into the Config struct. Fields absent
// from the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps PLAUDER_* environment variables to config
// fields. Env vars win over the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PLAUDER_BACKEND_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv("PLAUDER_BACKEND_TOKEN"); v != "" {
		cfg.Backend.Token = v
	}
	if v := os.Getenv("PLAUDER_MODEL"); v != "" {
		cfg.Chat.Model = v
	}
	if v := os.Getenv("PLAUDER_STREAM"); v != "" {
		cfg.Chat.Stream = v == "true" || v == "1"
	}
	if v := os.Getenv("PLAUDER_THINK"); v != "" {
		cfg.Chat.Think = v == "true" || v == "1"
	}
	if v := os.Getenv("PLAUDER_MAX_TOOL_ROUNDS"); v != "" {
		if rounds, err := strconv.Atoi(v); err == nil {
			cfg.Chat.MaxToolRounds = rounds
		}
	}
	if v := os.Getenv("PLAUDER_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("PLAUDER_STORAGE_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			cfg.Storage.MaxSize = size
		}
	}
	if v := os.Getenv("PLAUDER_POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}

	// PLAUDER_MCP_SERVERS: JSON array of MCP server configs.
	if v := os.Getenv("PLAUDER_MCP_SERVERS"); v != "" {
		servers, err := parseMCPServersJSON(v)
		if err == nil && len(servers) > 0 {
			cfg.MCP.Servers = servers
		}
	}
}

// parseMCPServersJSON parses a JSON array of MCP server configurations.
func parseMCPServersJSON(jsonStr string) ([]mcp.ServerConfig, error) {
	var servers []mcp.ServerConfig
	if err := json.Unmarshal([]byte(jsonStr), &servers); err != nil {
		return nil, fmt.Errorf("parsing MCP servers JSON: %w", err)
	}
	return servers, nil
}

// resolveFileReferences reads _file fields into the corresponding value
// fields. A _file reference applies only when the value field is empty.
func resolveFileReferences(cfg *Config) error {
	if cfg.Backend.TokenFile != "" && cfg.Backend.Token == "" {
		val, err := readSecretFile(cfg.Backend.TokenFile)
		if err != nil {
			return fmt.Errorf("backend.token_file: %w", err)
		}
		cfg.Backend.Token = val
	}

	if cfg.Backend.JWT.SecretFile != "" && cfg.Backend.JWT.Secret == "" {
		val, err := readSecretFile(cfg.Backend.JWT.SecretFile)
		if err != nil {
			return fmt.Errorf("backend.jwt.secret_file: %w", err)
		}
		cfg.Backend.JWT.Secret = val
	}

	if cfg.Storage.Postgres.DSNFile != "" && cfg.Storage.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = val
	}

	return nil
}

// readSecretFile reads a file and trims surrounding whitespace.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
