package engine

import (
	"encoding/json"

	"github.com/plauder-dev/plauder/pkg/api"
)

// Config holds the per-engine turn parameters.
type Config struct {
	// Model is the backend model name. Required.
	Model string

	// Options are the sampling parameters sent with every turn. Fields
	// left at their unset sentinel are omitted from the wire request.
	Options api.Options

	// Stream selects streaming turns. Single-shot turns read the full
	// reply in one response body.
	Stream bool

	// Think asks the backend to emit its reasoning trace alongside the
	// answer, for models that support it.
	Think bool

	// Format is a plain response format hint such as "json". Schema,
	// when set, replaces Format with a structured-output JSON schema.
	Format string
	Schema json.RawMessage

	// MaxToolRounds caps the tool continuation loop. Zero or negative
	// means the default of 10.
	MaxToolRounds int

	// ToolCapable overrides model capability detection. Nil means
	// detect from the model name.
	ToolCapable *bool
}

// maxRounds returns the effective round cap, defaulting to 10.
func (c Config) maxRounds() int {
	if c.MaxToolRounds <= 0 {
		return 10
	}
	return c.MaxToolRounds
}

// toolCapable reports whether tool definitions may be sent with
// requests for the configured model.
func (c Config) toolCapable() bool {
	if c.ToolCapable != nil {
		return *c.ToolCapable
	}
	return ModelSupportsTools(c.Model)
}
