package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/plauder-dev/plauder/pkg/api"
)

// Client wraps one MCP server connection. It handles the protocol
// handshake, tool discovery, and tool execution over the session.
type Client struct {
	cfg     ServerConfig
	client  *mcp.Client
	session *mcp.ClientSession

	mu            sync.Mutex
	cachedTools   []api.ToolDefinition
	toolsResolved bool
}

// NewClient creates a Client for the given server configuration. Call
// Connect before using it.
func NewClient(cfg ServerConfig) *Client {
	return &Client{cfg: cfg}
}

// Connect establishes the MCP connection, performing the handshake.
func (c *Client) Connect(ctx context.Context) error {
	return c.ConnectWithTransport(ctx, nil)
}

// ConnectWithTransport connects using the given transport. A nil
// transport is created from the server configuration; tests pass an
// in-memory transport here.
func (c *Client) ConnectWithTransport(ctx context.Context, transport mcp.Transport) error {
	c.client = mcp.NewClient(
		&mcp.Implementation{
			Name:    "plauder",
			Version: "1.0.0",
		},
		&mcp.ClientOptions{
			Capabilities: &mcp.ClientCapabilities{},
		},
	)

	if transport == nil {
		t, err := c.createTransport()
		if err != nil {
			return fmt.Errorf("creating transport for %q: %w", c.cfg.Name, err)
		}
		transport = t
	}

	session, err := c.client.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("connecting to MCP server %q: %w", c.cfg.Name, err)
	}
	c.session = session
	return nil
}

func (c *Client) createTransport() (mcp.Transport, error) {
	httpClient := c.buildHTTPClient()

	switch c.cfg.Transport {
	case "sse":
		transport := &mcp.SSEClientTransport{Endpoint: c.cfg.URL}
		if httpClient != nil {
			transport.HTTPClient = httpClient
		}
		return transport, nil

	case "streamable-http", "":
		transport := &mcp.StreamableClientTransport{Endpoint: c.cfg.URL}
		if httpClient != nil {
			transport.HTTPClient = httpClient
		}
		return transport, nil

	default:
		return nil, fmt.Errorf("unsupported transport type %q", c.cfg.Transport)
	}
}

// buildHTTPClient returns an HTTP client that injects the configured
// static headers, or nil when none are set.
func (c *Client) buildHTTPClient() *http.Client {
	if len(c.cfg.Headers) == 0 {
		return nil
	}
	return &http.Client{
		Transport: &headerTransport{
			base:    http.DefaultTransport,
			headers: c.cfg.Headers,
		},
	}
}

// headerTransport adds configured headers to every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// DiscoverTools lists the server's tools and converts them to tool
// definitions. Results are cached; later calls return the cache.
func (c *Client) DiscoverTools(ctx context.Context) ([]api.ToolDefinition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.toolsResolved {
		return c.cachedTools, nil
	}

	if c.session == nil {
		return nil, fmt.Errorf("MCP client %q not connected", c.cfg.Name)
	}

	var defs []api.ToolDefinition
	for tool, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("listing tools from %q: %w", c.cfg.Name, err)
		}
		td, convErr := convertTool(tool)
		if convErr != nil {
			return nil, fmt.Errorf("converting tool %q from %q: %w", tool.Name, c.cfg.Name, convErr)
		}
		defs = append(defs, td)
	}

	c.cachedTools = defs
	c.toolsResolved = true
	return defs, nil
}

// CallTool executes one tool call on the server. Failures become error
// replies rather than Go errors so the model can see them.
func (c *Client) CallTool(ctx context.Context, call api.ToolCall) api.Message {
	if c.session == nil {
		return api.NewToolErrorReply(call, fmt.Sprintf("MCP client %q not connected", c.cfg.Name))
	}

	var args map[string]any
	if len(call.Function.Arguments) > 0 {
		if err := json.Unmarshal(call.Function.Arguments, &args); err != nil {
			return api.NewToolErrorReply(call, fmt.Sprintf("invalid arguments JSON: %v", err))
		}
	}

	result, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      call.Function.Name,
		Arguments: args,
	})
	if err != nil {
		return api.NewToolErrorReply(call, fmt.Sprintf("MCP tool call error: %v", err))
	}

	output := textContent(result)
	if result.IsError {
		return api.NewToolErrorReply(call, output)
	}
	return api.NewToolReply(call, output)
}

// Close closes the MCP session.
func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

func convertTool(t *mcp.Tool) (api.ToolDefinition, error) {
	var params json.RawMessage
	if t.InputSchema != nil {
		data, err := json.Marshal(t.InputSchema)
		if err != nil {
			return api.ToolDefinition{}, fmt.Errorf("marshaling input schema: %w", err)
		}
		params = data
	}
	return api.NewToolDefinition(t.Name, t.Description, params), nil
}

// textContent joins the text parts of a tool result. Non-text content
// is ignored.
func textContent(result *mcp.CallToolResult) string {
	var output string
	for _, content := range result.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			if output != "" {
				output += "\n"
			}
			output += tc.Text
		}
	}
	return output
}
