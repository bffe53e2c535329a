package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid
// values. Failures name the offending field path.
func (c *Config) Validate() error {
	var errs []error

	if c.Backend.URL == "" {
		errs = append(errs, fmt.Errorf("backend.url is required"))
	}

	if c.Chat.Model == "" {
		errs = append(errs, fmt.Errorf("chat.model is required"))
	}

	if c.Chat.Format != "" && len(c.Chat.Schema) > 0 {
		errs = append(errs, fmt.Errorf("chat.format and chat.schema are mutually exclusive"))
	}

	switch c.Storage.Type {
	case "memory", "postgres":
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	if c.Backend.Token != "" && c.Backend.JWT.Secret != "" {
		errs = append(errs, fmt.Errorf("backend.token and backend.jwt.secret are mutually exclusive"))
	}

	for i, server := range c.MCP.Servers {
		if server.Name == "" {
			errs = append(errs, fmt.Errorf("mcp.servers[%d].name is required", i))
		}
		if server.URL == "" {
			errs = append(errs, fmt.Errorf("mcp.servers[%d].url is required", i))
		}
		switch server.Transport {
		case "", "sse", "streamable-http":
		default:
			errs = append(errs, fmt.Errorf("mcp.servers[%d].transport must be \"sse\" or \"streamable-http\", got %q", i, server.Transport))
		}
	}

	return errors.Join(errs...)
}
