package engine

import "github.com/plauder-dev/plauder/pkg/api"

// Observer receives turn lifecycle events. Implementations must not
// block; the engine calls them inline on the stream read path.
type Observer interface {
	// OnStreamStarted fires once per network call, on the first chunk.
	OnStreamStarted()

	// OnChunk fires for every fold that added text or completed the
	// turn. text is the delta from this chunk only; thinking marks
	// reasoning-trace text as opposed to answer text.
	OnChunk(text string, thinking bool, resp *Response)

	// OnToolMessage fires for each tool reply before it is appended to
	// the conversation and resubmitted.
	OnToolMessage(msg api.Message)
}

// NopObserver ignores all events. Embed it to implement a partial
// observer.
type NopObserver struct{}

func (NopObserver) OnStreamStarted() {}

func (NopObserver) OnChunk(string, bool, *Response) {}

func (NopObserver) OnToolMessage(api.Message) {}
