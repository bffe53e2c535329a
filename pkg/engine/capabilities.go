package engine

import "strings"

// toolCapableModels lists model name prefixes known to handle tool
// definitions. Backends reject tool-bearing requests for models outside
// this set, so the codec omits tools for them instead of failing the
// whole turn.
var toolCapableModels = []string{
	"llama3.1",
	"llama3.2",
	"llama3.3",
	"llama4",
	"qwen2.5",
	"qwen3",
	"mistral",
	"mistral-nemo",
	"mistral-small",
	"mistral-large",
	"mixtral",
	"firefunction",
	"command-r",
	"granite3",
	"hermes3",
	"nemotron",
	"devstral",
	"gpt-oss",
}

// ModelSupportsTools reports whether the named model accepts tool
// definitions. Matching is by prefix on the base name, so tags like
// "llama3.1:8b" resolve the same as "llama3.1".
func ModelSupportsTools(model string) bool {
	name := strings.ToLower(model)
	if idx := strings.IndexByte(name, ':'); idx >= 0 {
		name = name[:idx]
	}
	for _, prefix := range toolCapableModels {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
