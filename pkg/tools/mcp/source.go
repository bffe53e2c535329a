package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/plauder-dev/plauder/pkg/api"
	"github.com/plauder-dev/plauder/pkg/observability"
	"github.com/plauder-dev/plauder/pkg/tools"
)

// Source aggregates the tools of one or more connected MCP servers and
// executes calls against whichever server provides the tool. It
// implements tools.Executor so the engine can drive MCP tools the same
// way it drives local function tools.
type Source struct {
	mu sync.RWMutex

	// clients maps server name to its connected Client.
	clients map[string]*Client

	// toolToServer maps a tool name to the server providing it.
	toolToServer map[string]string

	discovered bool
}

var _ tools.Executor = (*Source)(nil)

// NewSource creates a Source over the given connected clients.
func NewSource(clients map[string]*Client) *Source {
	return &Source{
		clients:      clients,
		toolToServer: make(map[string]string),
	}
}

// Definitions returns all tools discovered across the connected
// servers. Discovery runs lazily on first use.
func (s *Source) Definitions() []api.ToolDefinition {
	s.ensureDiscovered()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []api.ToolDefinition
	for _, client := range s.clients {
		client.mu.Lock()
		all = append(all, client.cachedTools...)
		client.mu.Unlock()
	}
	return all
}

// Execute routes each call to the server providing the tool and
// returns one reply per call. Unknown tools produce error replies.
func (s *Source) Execute(ctx context.Context, calls []api.ToolCall) []api.Message {
	s.ensureDiscovered()

	replies := make([]api.Message, 0, len(calls))
	for _, call := range calls {
		if ctx.Err() != nil {
			replies = append(replies, api.NewToolErrorReply(call, "cancelled before execution"))
			continue
		}
		replies = append(replies, s.executeOne(ctx, call))
	}
	return replies
}

func (s *Source) executeOne(ctx context.Context, call api.ToolCall) api.Message {
	name := call.Function.Name

	s.mu.RLock()
	serverName, ok := s.toolToServer[name]
	client := s.clients[serverName]
	s.mu.RUnlock()

	if !ok {
		observability.ToolExecutionsTotal.WithLabelValues(name, "error").Inc()
		return api.NewToolErrorReply(call, fmt.Sprintf("no MCP server provides tool %q", name))
	}

	reply := client.CallTool(ctx, call)
	status := "success"
	if len(reply.Content) >= len(api.ToolErrorPrefix) && reply.Content[:len(api.ToolErrorPrefix)] == api.ToolErrorPrefix {
		status = "error"
	}
	observability.ToolExecutionsTotal.WithLabelValues(name, status).Inc()
	return reply
}

// Close closes all server connections and returns the last error seen.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	for name, client := range s.clients {
		if err := client.Close(); err != nil {
			slog.Warn("failed to close MCP client", "server", name, "error", err)
			lastErr = err
		}
	}
	return lastErr
}

func (s *Source) ensureDiscovered() {
	s.mu.RLock()
	if s.discovered {
		s.mu.RUnlock()
		return
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.discovered {
		return
	}

	ctx := context.Background()
	for name, client := range s.clients {
		defs, err := client.DiscoverTools(ctx)
		if err != nil {
			slog.Error("failed to discover tools from MCP server",
				"server", name,
				"error", err,
			)
			continue
		}

		for _, td := range defs {
			if _, exists := s.toolToServer[td.Function.Name]; exists {
				slog.Warn("duplicate MCP tool name, using first provider",
					"tool", td.Function.Name,
					"server", name,
				)
				continue
			}
			s.toolToServer[td.Function.Name] = name
		}

		slog.Info("discovered MCP tools", "server", name, "count", len(defs))
	}

	s.discovered = true
}
