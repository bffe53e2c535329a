package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/plauder-dev/plauder/pkg/api"
	"github.com/plauder-dev/plauder/pkg/auth"
	"github.com/plauder-dev/plauder/pkg/debug"
	"github.com/plauder-dev/plauder/pkg/wire"
)

// chatPath is the backend chat endpoint, relative to the base URL.
const chatPath = "/api/chat"

// Config holds transport adapter settings.
type Config struct {
	// BaseURL is the backend root, e.g. "http://localhost:11434".
	BaseURL string

	// Tokens supplies the outbound bearer credential. Nil means no
	// authentication.
	Tokens auth.TokenSource

	// Timeout bounds single-shot requests. Zero means 120s. Streaming
	// requests ignore it and rely on context cancellation.
	Timeout time.Duration

	// Transport allows injecting a custom http.RoundTripper.
	Transport http.RoundTripper
}

// Client performs HTTP requests against the chat backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     auth.TokenSource
}

// New creates a Client for the given backend.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: cfg.Transport,
		},
		baseURL: baseURL,
		tokens:  cfg.Tokens,
	}
}

// Complete performs one non-streaming model turn: send, read the full
// body, classify the status, parse one JSON object.
func (c *Client) Complete(ctx context.Context, req *wire.ChatRequest) (*wire.ChatChunk, error) {
	httpReq, err := c.newChatRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	debug.Log("client", "single-shot request", "url", httpReq.URL.String(), "model", req.Model)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, api.NewTransportError("reading backend response: " + err.Error())
	}

	var chunk wire.ChatChunk
	if err := json.Unmarshal(body, &chunk); err != nil {
		return nil, api.NewProtocolError(httpResp.StatusCode,
			fmt.Sprintf("failed to parse backend response: %s", err.Error()))
	}
	return &chunk, nil
}

// Stream performs one streaming model turn. Each decoded chunk is
// passed to fn in arrival order; a malformed line is skipped and never
// aborts the stream. The read loop stops after the completion chunk.
//
// Cancellation is checked at transport initiation and at every blocking
// read. When the context fires, Stream returns nil: cancellation is a
// terminal state for the caller to observe on the context, not an error.
func (c *Client) Stream(ctx context.Context, req *wire.ChatRequest, fn func(*wire.ChatChunk) error) error {
	if ctx.Err() != nil {
		return nil
	}

	httpReq, err := c.newChatRequest(ctx, req)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "application/x-ndjson")

	debug.Log("client", "streaming request", "url", httpReq.URL.String(), "model", req.Model)

	// No timeout for streaming. The context controls the lifetime.
	streamClient := &http.Client{
		Transport: c.httpClient.Transport,
	}

	httpResp, err := streamClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return MapHTTPError(httpResp)
	}

	return readLines(ctx, httpResp.Body, fn)
}

// newChatRequest builds the POST request with body, content type, and
// the Authorization header from the token source.
func (c *Client) newChatRequest(ctx context.Context, req *wire.ChatRequest) (*http.Request, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, api.NewInvalidArgumentError("request",
			fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, api.NewInvalidArgumentError("url",
			fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, api.NewUnauthorizedError("obtaining backend credential: " + err.Error())
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return httpReq, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
