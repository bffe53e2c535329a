package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/plauder-dev/plauder/pkg/api"
	"github.com/plauder-dev/plauder/pkg/observability"
)

// Handler executes one function tool call. The returned string becomes
// the tool reply content. A returned error is converted into an
// "ERROR: ..." reply, not propagated.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// entry pairs a tool with its activation state.
type entry struct {
	def     api.ToolDefinition
	handler Handler
	enabled bool
}

// Registry holds named function tools and implements Executor by
// dispatching each call to its handler, one at a time, collecting one
// reply per call before the engine resubmits the round.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*entry
	order []string // registration order, for stable Definitions output
}

// Ensure Registry implements Executor at compile time.
var _ Executor = (*Registry)(nil)

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*entry)}
}

// Register adds a tool. Registered tools start enabled. Registering a
// name twice is an error.
func (r *Registry) Register(def api.ToolDefinition, h Handler) error {
	name := def.Function.Name
	if name == "" {
		return fmt.Errorf("registry: tool definition has no function name")
	}
	if h == nil {
		return fmt.Errorf("registry: tool %q has no handler", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("registry: tool %q already registered", name)
	}
	r.tools[name] = &entry{def: def, handler: h, enabled: true}
	r.order = append(r.order, name)
	return nil
}

// SetEnabled activates or deactivates a tool. Inactive tools are left
// out of Definitions and answer calls with an error reply. Returns
// false if the tool is unknown.
func (r *Registry) SetEnabled(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tools[name]
	if !ok {
		return false
	}
	e.enabled = enabled
	return true
}

// Definitions returns the definitions of all active tools, in
// registration order. The result feeds the wire codec's tool list.
func (r *Registry) Definitions() []api.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var defs []api.ToolDefinition
	for _, name := range r.order {
		if e := r.tools[name]; e.enabled {
			defs = append(defs, e.def)
		}
	}
	return defs
}

// Execute dispatches each call to its handler sequentially and returns
// one reply per call. Unknown or disabled tools, handler errors, and a
// cancelled context all produce error replies rather than aborting the
// batch.
func (r *Registry) Execute(ctx context.Context, calls []api.ToolCall) []api.Message {
	replies := make([]api.Message, 0, len(calls))

	for _, call := range calls {
		if ctx.Err() != nil {
			replies = append(replies, api.NewToolErrorReply(call, "cancelled before execution"))
			continue
		}
		replies = append(replies, r.executeOne(ctx, call))
	}
	return replies
}

func (r *Registry) executeOne(ctx context.Context, call api.ToolCall) api.Message {
	name := call.Function.Name

	r.mu.RLock()
	e, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		observability.ToolExecutionsTotal.WithLabelValues(name, "error").Inc()
		return api.NewToolErrorReply(call, "no tool registered with name "+name)
	}
	if !e.enabled {
		observability.ToolExecutionsTotal.WithLabelValues(name, "error").Inc()
		return api.NewToolErrorReply(call, "tool "+name+" is not active")
	}

	output, err := e.handler(ctx, call.Function.Arguments)
	if err != nil {
		slog.Warn("tool execution error",
			"tool", name,
			"call_id", call.ID,
			"error", err.Error(),
		)
		observability.ToolExecutionsTotal.WithLabelValues(name, "error").Inc()
		return api.NewToolErrorReply(call, err.Error())
	}

	observability.ToolExecutionsTotal.WithLabelValues(name, "success").Inc()
	return api.NewToolReply(call, output)
}
