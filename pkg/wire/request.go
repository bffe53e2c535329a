package wire

import (
	"encoding/json"

	"github.com/plauder-dev/plauder/pkg/api"
)

// EncodeParams holds everything besides the conversation that shapes
// the request payload.
type EncodeParams struct {
	Model   string
	Options api.Options

	// Tools is the list of active tool definitions. It is only sent
	// when non-empty AND ToolCapable is true; otherwise the field is
	// omitted entirely.
	Tools       []api.ToolDefinition
	ToolCapable bool

	Stream bool
	Think  bool

	// Format is the plain response format hint (e.g. "json"). Schema,
	// when set, is a structured-output JSON schema and replaces Format;
	// the two are mutually exclusive with Schema winning.
	Format string
	Schema json.RawMessage
}

// EncodeChat serializes a conversation and parameters into the request
// payload for one model turn.
func EncodeChat(conv *api.Conversation, p EncodeParams) *ChatRequest {
	req := &ChatRequest{
		Model:    p.Model,
		Messages: conv.Messages,
		Stream:   p.Stream,
		Think:    p.Think,
		Options:  translateOptionKeys(optionValues(p.Options)),
	}

	if len(p.Tools) > 0 && p.ToolCapable {
		req.Tools = p.Tools
	}

	switch {
	case len(p.Schema) > 0:
		req.Format = p.Schema
	case p.Format != "":
		// A plain format is a JSON string on the wire.
		quoted, _ := json.Marshal(p.Format)
		req.Format = quoted
	}

	return req
}

// optionValues collects the configured options under their internal
// names, skipping any field still at its unset sentinel.
func optionValues(o api.Options) map[string]any {
	opts := make(map[string]any)

	if o.Temperature != api.Unset {
		opts["temperature"] = o.Temperature
	}
	if o.TopP != api.Unset {
		opts["topP"] = o.TopP
	}
	if o.TopK != api.Unset {
		opts["topK"] = o.TopK
	}
	if o.RepeatPenalty != api.Unset {
		opts["repeatPenalty"] = o.RepeatPenalty
	}
	if o.Seed != api.Unset {
		opts["seed"] = o.Seed
	}
	if o.ContextWindow != api.Unset {
		opts["contextWindow"] = o.ContextWindow
	}
	if o.MaxTokens != api.Unset {
		opts["maxTokens"] = o.MaxTokens
	}
	if o.Stop != "" {
		opts["stop"] = o.Stop
	}

	return opts
}

// wireOptionNames maps internal option names to the backend's wire
// convention. The rename runs as a post-process pass over the whole
// options object so new options only need a table entry.
var wireOptionNames = map[string]string{
	"temperature":   "temperature",
	"topP":          "top_p",
	"topK":          "top_k",
	"repeatPenalty": "repeat_penalty",
	"seed":          "seed",
	"contextWindow": "num_ctx",
	"maxTokens":     "num_predict",
	"stop":          "stop",
}

// translateOptionKeys renames every option key to its wire name.
// Unknown keys pass through unchanged. Returns nil for an empty map so
// the options field is omitted from the payload.
func translateOptionKeys(opts map[string]any) map[string]any {
	if len(opts) == 0 {
		return nil
	}

	translated := make(map[string]any, len(opts))
	for key, value := range opts {
		wireName, ok := wireOptionNames[key]
		if !ok {
			wireName = key
		}
		translated[wireName] = value
	}
	return translated
}
