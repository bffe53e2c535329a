package integration

import (
	"context"
	"testing"

	"github.com/plauder-dev/plauder/pkg/api"
	"github.com/plauder-dev/plauder/pkg/engine"
)

func TestUnknownModelMapsToNotFound(t *testing.T) {
	e := newEngine(t, nil, nil, engine.Config{Model: "missing-model"})

	_, err := e.Send(context.Background(), userConv("hi"))
	if !api.IsKind(err, api.ErrorKindNotFound) {
		t.Errorf("err = %v, want not_found", err)
	}
}

func TestBackendFailureMapsToServerError(t *testing.T) {
	e := newEngine(t, nil, nil, engine.Config{Model: "broken-model"})

	_, err := e.Send(context.Background(), userConv("hi"))
	if !api.IsKind(err, api.ErrorKindServer) {
		t.Fatalf("err = %v, want server_error", err)
	}
	var apiErr *api.Error
	if !asError(err, &apiErr) {
		t.Fatalf("err %T is not *api.Error", err)
	}
	if apiErr.Status != 500 {
		t.Errorf("status = %d", apiErr.Status)
	}
	if apiErr.Message != "backend exploded" {
		t.Errorf("message = %q, want backend payload extracted", apiErr.Message)
	}
}

func TestUnreachableBackendMapsToTransportError(t *testing.T) {
	// Port 1 refuses connections.
	e := engineAgainst(t, "http://127.0.0.1:1")

	_, err := e.Send(context.Background(), userConv("hi"))
	if !api.IsKind(err, api.ErrorKindTransport) {
		t.Errorf("err = %v, want transport_error", err)
	}
}

func TestPreCancelledContext(t *testing.T) {
	testEnv.resetRequests()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newEngine(t, nil, nil, engine.Config{Model: "mock-model", Stream: true})
	resp, err := e.Send(ctx, userConv("hi"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Status != engine.StatusCancelled {
		t.Errorf("status = %q", resp.Status)
	}
	if !resp.Done {
		t.Error("cancelled response not marked done")
	}
	if len(testEnv.recordedRequests()) != 0 {
		t.Error("request sent despite pre-cancelled context")
	}
}
