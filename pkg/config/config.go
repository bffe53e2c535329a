// Package config provides unified configuration for the plauder chat
// engine.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (PLAUDER_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import (
	"encoding/json"
	"time"

	"github.com/plauder-dev/plauder/pkg/api"
	"github.com/plauder-dev/plauder/pkg/tools/mcp"
)

// Config holds all configuration for the chat engine.
type Config struct {
	Backend       BackendConfig       `yaml:"backend"`
	Chat          ChatConfig          `yaml:"chat"`
	Storage       StorageConfig       `yaml:"storage"`
	MCP           MCPConfig           `yaml:"mcp"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// BackendConfig holds backend connection settings.
type BackendConfig struct {
	// URL is the backend base URL, e.g. "http://localhost:11434".
	// Required.
	URL string `yaml:"url"`

	// Token is a static bearer token sent with every request.
	Token     string `yaml:"token"`
	TokenFile string `yaml:"token_file"` // _file variant for token

	// JWT configures outbound request signing. When a secret is set,
	// short-lived HS256 tokens are minted instead of a static token.
	JWT JWTConfig `yaml:"jwt"`

	// Timeout bounds single-shot requests (default: 120s). Streaming
	// requests are bounded by their context alone.
	Timeout time.Duration `yaml:"timeout"`
}

// JWTConfig holds outbound JWT signing settings.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	SecretFile string        `yaml:"secret_file"` // _file variant for secret
	Issuer     string        `yaml:"issuer"`
	Audience   string        `yaml:"audience"`
	Subject    string        `yaml:"subject"`
	TTL        time.Duration `yaml:"ttl"` // default: 5m
}

// ChatConfig holds per-turn model settings.
type ChatConfig struct {
	// Model is the backend model name. Required.
	Model string `yaml:"model"`

	Stream bool `yaml:"stream"` // default: true
	Think  bool `yaml:"think"`

	// Format is a plain response format hint such as "json". Schema,
	// when set, replaces Format with a structured-output JSON schema.
	Format string          `yaml:"format"`
	Schema json.RawMessage `yaml:"schema"`

	// MaxToolRounds caps the tool continuation loop (default: 10).
	MaxToolRounds int `yaml:"max_tool_rounds"`

	// Options are sampling parameters. Absent fields stay at their
	// unset sentinel and are omitted from requests.
	Options api.Options `yaml:"options"`
}

// StorageConfig holds conversation persistence settings.
type StorageConfig struct {
	Type     string         `yaml:"type"`     // "memory" or "postgres", default: "memory"
	MaxSize  int            `yaml:"max_size"` // for memory store, default: 1000
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"` // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

// MCPConfig holds MCP server connection settings.
type MCPConfig struct {
	Servers []mcp.ServerConfig `yaml:"servers"`
}

// ObservabilityConfig holds monitoring settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds the Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"` // default: ":9090"
	Path    string `yaml:"path"` // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Backend: BackendConfig{
			URL:     "http://localhost:11434",
			Timeout: 120 * time.Second,
			JWT: JWTConfig{
				TTL: 5 * time.Minute,
			},
		},
		Chat: ChatConfig{
			Stream:        true,
			MaxToolRounds: 10,
			Options:       api.DefaultOptions(),
		},
		Storage: StorageConfig{
			Type:    "memory",
			MaxSize: 1000,
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: false,
				Addr:    ":9090",
				Path:    "/metrics",
			},
		},
	}
}
