package tools

import (
	"context"

	"github.com/plauder-dev/plauder/pkg/api"
)

// Source supplies tool definitions and executes calls against them.
type Source interface {
	Definitions() []api.ToolDefinition
	Execute(ctx context.Context, calls []api.ToolCall) []api.Message
}

// Multi merges several tool sources into one. Definitions concatenate
// in source order; calls route to the first source that defines the
// tool at execution time.
type Multi struct {
	sources []Source
}

// NewMulti combines the given sources. Nil sources are skipped.
func NewMulti(sources ...Source) *Multi {
	m := &Multi{}
	for _, s := range sources {
		if s != nil {
			m.sources = append(m.sources, s)
		}
	}
	return m
}

// Definitions returns the union of all source definitions. A name
// defined by several sources appears once, from the earliest source.
func (m *Multi) Definitions() []api.ToolDefinition {
	seen := make(map[string]bool)
	var defs []api.ToolDefinition
	for _, s := range m.sources {
		for _, td := range s.Definitions() {
			if seen[td.Function.Name] {
				continue
			}
			seen[td.Function.Name] = true
			defs = append(defs, td)
		}
	}
	return defs
}

// Execute routes each call to the source owning the tool and returns
// one reply per call. Calls for tools no source defines get error
// replies.
func (m *Multi) Execute(ctx context.Context, calls []api.ToolCall) []api.Message {
	owner := make(map[string]Source)
	for _, s := range m.sources {
		for _, td := range s.Definitions() {
			if _, ok := owner[td.Function.Name]; !ok {
				owner[td.Function.Name] = s
			}
		}
	}

	replies := make([]api.Message, 0, len(calls))
	for _, call := range calls {
		s, ok := owner[call.Function.Name]
		if !ok {
			replies = append(replies, api.NewToolErrorReply(call, "no tool registered with name "+call.Function.Name))
			continue
		}
		out := s.Execute(ctx, []api.ToolCall{call})
		replies = append(replies, NormalizeReplies([]api.ToolCall{call}, out)...)
	}
	return replies
}
