package api

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of an engine error.
type ErrorKind string

const (
	// ErrorKindInvalidArgument marks requests rejected synchronously
	// before any network call (empty conversation, missing model).
	ErrorKindInvalidArgument ErrorKind = "invalid_argument"

	// ErrorKindBadRequest maps HTTP 400 from the backend.
	ErrorKindBadRequest ErrorKind = "bad_request"

	// ErrorKindUnauthorized maps HTTP 401 from the backend.
	ErrorKindUnauthorized ErrorKind = "unauthorized"

	// ErrorKindNotFound maps HTTP 404 from the backend.
	ErrorKindNotFound ErrorKind = "not_found"

	// ErrorKindServer maps HTTP 5xx from the backend.
	ErrorKindServer ErrorKind = "server_error"

	// ErrorKindTransport marks network-level failures: connection
	// refused, timeout, unreachable host, dropped stream.
	ErrorKindTransport ErrorKind = "transport_error"

	// ErrorKindProtocol marks responses the engine could not interpret
	// (non-JSON single-shot body, unexpected status codes).
	ErrorKindProtocol ErrorKind = "protocol_error"
)

// Error is a structured engine error with a kind, an optional offending
// parameter, an optional HTTP status, and a readable message.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Param   string    `json:"param,omitempty"`
	Status  int       `json:"status,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Kind, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewInvalidArgumentError creates an Error for arguments rejected
// before any network activity.
func NewInvalidArgumentError(param, message string) *Error {
	return &Error{
		Kind:    ErrorKindInvalidArgument,
		Param:   param,
		Message: message,
	}
}

// NewBadRequestError creates an Error for HTTP 400 responses. The
// message carries the backend's structured error text when available.
func NewBadRequestError(message string) *Error {
	return &Error{
		Kind:    ErrorKindBadRequest,
		Status:  400,
		Message: "bad request: " + message,
	}
}

// NewUnauthorizedError creates an Error for HTTP 401 responses.
func NewUnauthorizedError(message string) *Error {
	return &Error{
		Kind:    ErrorKindUnauthorized,
		Status:  401,
		Message: message,
	}
}

// NewNotFoundError creates an Error for HTTP 404 responses.
func NewNotFoundError(message string) *Error {
	return &Error{
		Kind:    ErrorKindNotFound,
		Status:  404,
		Message: message,
	}
}

// NewServerError creates an Error for HTTP 5xx responses.
func NewServerError(status int, message string) *Error {
	return &Error{
		Kind:    ErrorKindServer,
		Status:  status,
		Message: message,
	}
}

// NewTransportError creates an Error for network-level failures.
func NewTransportError(message string) *Error {
	return &Error{
		Kind:    ErrorKindTransport,
		Message: message,
	}
}

// NewProtocolError creates an Error for uninterpretable backend
// responses. The status is the raw HTTP code when one was received.
func NewProtocolError(status int, message string) *Error {
	return &Error{
		Kind:    ErrorKindProtocol,
		Status:  status,
		Message: message,
	}
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
