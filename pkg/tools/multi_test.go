package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/plauder-dev/plauder/pkg/api"
)

func namedRegistry(t *testing.T, names ...string) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, name := range names {
		tool := name
		err := r.Register(api.NewToolDefinition(tool, "", nil),
			func(context.Context, json.RawMessage) (string, error) {
				return "from " + tool, nil
			})
		if err != nil {
			t.Fatalf("register %s: %v", tool, err)
		}
	}
	return r
}

func TestMultiDefinitionsDeduplicate(t *testing.T) {
	m := NewMulti(
		namedRegistry(t, "alpha", "shared"),
		namedRegistry(t, "beta", "shared"),
	)

	defs := m.Definitions()
	if len(defs) != 3 {
		t.Fatalf("definitions = %d, want 3", len(defs))
	}
	if defs[0].Function.Name != "alpha" || defs[1].Function.Name != "shared" || defs[2].Function.Name != "beta" {
		t.Errorf("definition order: %v", defs)
	}
}

func TestMultiRoutesToOwningSource(t *testing.T) {
	m := NewMulti(
		namedRegistry(t, "alpha"),
		namedRegistry(t, "beta"),
	)

	replies := m.Execute(context.Background(), []api.ToolCall{
		call("c1", "beta"),
		call("c2", "alpha"),
	})
	if len(replies) != 2 {
		t.Fatalf("replies = %d", len(replies))
	}
	if replies[0].Content != "from beta" || replies[1].Content != "from alpha" {
		t.Errorf("routing wrong: %q, %q", replies[0].Content, replies[1].Content)
	}
}

func TestMultiUnknownToolErrorReply(t *testing.T) {
	m := NewMulti(namedRegistry(t, "alpha"))

	replies := m.Execute(context.Background(), []api.ToolCall{call("c1", "ghost")})
	if len(replies) != 1 {
		t.Fatalf("replies = %d", len(replies))
	}
	if !strings.HasPrefix(replies[0].Content, api.ToolErrorPrefix) {
		t.Errorf("content = %q", replies[0].Content)
	}
	if replies[0].ToolCallID != "c1" {
		t.Errorf("call id = %q", replies[0].ToolCallID)
	}
}

func TestMultiSkipsNilSources(t *testing.T) {
	m := NewMulti(nil, namedRegistry(t, "alpha"), nil)
	if len(m.Definitions()) != 1 {
		t.Errorf("definitions = %v", m.Definitions())
	}
}
