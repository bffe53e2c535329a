// Package wire implements the chat wire codec: serializing a
// conversation plus generation parameters into the backend request
// payload, and deserializing one newline-delimited JSON chunk into a
// typed delta.
//
// Decoding is tolerant: unknown fields are ignored, and a line that is
// not a complete JSON object fails closed (the chunk is reported as
// undecodable so the caller can skip it) rather than aborting a stream.
package wire
