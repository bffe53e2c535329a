// Package client is the HTTP transport adapter for the chat backend.
// It performs the single-shot and line-streamed request modes, maps
// HTTP and network failures into the api error taxonomy, and honors
// cooperative cancellation: a cancelled context makes the streaming
// read loop exit silently instead of surfacing an error.
//
// Timeouts are the transport's responsibility; streaming requests run
// without a client timeout and rely on context cancellation, since a
// stream can legitimately outlive any fixed deadline.
package client
