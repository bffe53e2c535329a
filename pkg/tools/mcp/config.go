package mcp

// ServerConfig describes a single MCP server connection.
type ServerConfig struct {
	// Name is the logical name for this server, used for logging and
	// routing tool calls.
	Name string `yaml:"name" json:"name"`

	// Transport selects the connection type: "sse" or
	// "streamable-http". Empty defaults to "streamable-http".
	Transport string `yaml:"transport" json:"transport"`

	// URL is the MCP server endpoint.
	URL string `yaml:"url" json:"url"`

	// Headers are sent with every request, typically bearer tokens or
	// API keys.
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}
