package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/plauder-dev/plauder/pkg/api"
)

// MapHTTPError converts a non-2xx HTTP response into an api.Error.
// It attempts to extract the backend's structured error field from the
// body for a descriptive message.
func MapHTTPError(resp *http.Response) *api.Error {
	message := ExtractErrorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		if message == "" {
			message = "invalid request to backend"
		}
		return api.NewBadRequestError(message)

	case resp.StatusCode == http.StatusUnauthorized:
		if message == "" {
			message = "backend authorization failed"
		}
		return api.NewUnauthorizedError(message)

	case resp.StatusCode == http.StatusNotFound:
		if message == "" {
			message = "backend endpoint not found"
		}
		return api.NewNotFoundError(message)

	case resp.StatusCode >= http.StatusInternalServerError:
		if message == "" {
			message = fmt.Sprintf("backend server error (HTTP %d)", resp.StatusCode)
		}
		return api.NewServerError(resp.StatusCode, message)

	default:
		if message == "" {
			message = fmt.Sprintf("unexpected backend status (HTTP %d)", resp.StatusCode)
		}
		return api.NewProtocolError(resp.StatusCode, message)
	}
}

// MapNetworkError converts a network-level error (connection refused,
// timeout, DNS failure) into an api.Error with a readable message.
func MapNetworkError(err error) *api.Error {
	return api.NewTransportError("backend connection error: " + err.Error())
}

// errorBody matches both error body shapes the backend family produces:
// {"error":"message"} and {"error":{"message":"..."}}.
type errorBody struct {
	Error json.RawMessage `json:"error"`
}

type errorObject struct {
	Message string `json:"message"`
}

// ExtractErrorMessage parses the response body for a structured error
// field and returns its message, or "" if none could be extracted.
func ExtractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var wrapper errorBody
	if err := json.Unmarshal(data, &wrapper); err != nil || len(wrapper.Error) == 0 {
		return ""
	}

	// String form first.
	var msg string
	if err := json.Unmarshal(wrapper.Error, &msg); err == nil {
		return msg
	}

	// Object form.
	var obj errorObject
	if err := json.Unmarshal(wrapper.Error, &obj); err == nil {
		return obj.Message
	}

	return ""
}
