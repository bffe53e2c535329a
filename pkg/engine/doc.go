// Package engine orchestrates conversational model turns. Send encodes
// the conversation, performs the backend call (streaming or single
// shot), folds the reply chunks into a Response, and when the model
// requests tool calls, executes them and resubmits the grown
// conversation until the model answers in plain text or the round cap
// is hit.
//
// Observers receive stream lifecycle events so a UI can render text as
// it arrives. Cancellation mid-turn is not an error but a response
// status the caller inspects.
package engine
