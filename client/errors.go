// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"errors"
	"fmt"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/go-a2a/a2aconnect"
	"github.com/go-a2a/a2aconnect/internal/jsonrpc2"
)

// Errors returned by the client fall into distinct layers so callers can tell
// an unreachable agent ([*NetworkError]) from an HTTP failure ([*HTTPError]),
// an agent-reported error ([*RPCError]) and an agent speaking the protocol
// wrongly ([*ProtocolError]). None of them is retried by the client.

// NetworkError represents a transport failure: DNS, connection refused,
// timeout, cancellation or a broken read.
type NetworkError struct {
	Msg string
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("network error: %s", e.Msg)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// maxErrorBody bounds how much of an HTTP error body is quoted by [HTTPError.Error].
const maxErrorBody = 512

// HTTPError represents a non-2xx response whose body carries no JSON-RPC error.
type HTTPError struct {
	StatusCode int
	// Body is the raw response body.
	Body []byte
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("HTTP error %d", e.StatusCode)
	}
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, body)
}

// RPCError represents an error reported by the agent in a response envelope.
type RPCError struct {
	// Code is the error code
	Code int
	// Message is the error message
	Message string
	// Data is optional additional information about the error
	Data jsontext.Value
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

func newRPCError(e *jsonrpc2.Error) *RPCError {
	return &RPCError{
		Code:    e.Code,
		Message: e.Message,
		Data:    e.Data,
	}
}

// ProtocolError represents a response that does not follow the protocol,
// such as an envelope without the expected version or a result of the wrong shape.
type ProtocolError struct {
	Msg string
	Err error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("protocol error: %s", e.Msg)
}

// Unwrap returns the underlying error.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// FrameError describes one stream frame that was skipped.
// It is logged and counted, never returned from [Stream.Recv].
type FrameError struct {
	// Reason is one of the jsonrpc2 Drop* reasons.
	Reason  string
	Payload []byte
	Err     error
}

// Error implements the error interface.
func (e *FrameError) Error() string {
	return fmt.Sprintf("malformed stream frame (%s): %v", e.Reason, e.Err)
}

// Unwrap returns the underlying error.
func (e *FrameError) Unwrap() error {
	return e.Err
}

// ConfigurationError represents an invalid client setup, such as an unusable base URL.
type ConfigurationError struct {
	Msg string
	Err error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Msg)
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is, or wraps, a [*NetworkError].
func IsNetworkError(err error) bool {
	var nerr *NetworkError
	return errors.As(err, &nerr)
}

// IsHTTPError reports whether err is, or wraps, a [*HTTPError].
func IsHTTPError(err error) bool {
	var herr *HTTPError
	return errors.As(err, &herr)
}

// IsProtocolError reports whether err was produced by the agent's response
// itself: either an agent-reported [*RPCError] or a malformed envelope.
func IsProtocolError(err error) bool {
	var rerr *RPCError
	var perr *ProtocolError
	return errors.As(err, &rerr) || errors.As(err, &perr)
}

// IsRPCError checks if an error is an RPCError with the specified code.
func IsRPCError(err error, code int) bool {
	var rerr *RPCError
	return errors.As(err, &rerr) && rerr.Code == code
}

// IsTaskNotFoundError checks if an error is due to a task not being found.
func IsTaskNotFoundError(err error) bool {
	return IsRPCError(err, a2a.ErrorCodeTaskNotFound)
}

// IsTaskNotCancelableError checks if an error is due to a task not being cancelable.
func IsTaskNotCancelableError(err error) bool {
	return IsRPCError(err, a2a.ErrorCodeTaskNotCancelable)
}

// errorKind names the layer of err for telemetry.
func errorKind(err error) string {
	var (
		nerr *NetworkError
		herr *HTTPError
		rerr *RPCError
		perr *ProtocolError
		cerr *ConfigurationError
	)
	switch {
	case errors.As(err, &nerr):
		return "network"
	case errors.As(err, &herr):
		return "http"
	case errors.As(err, &rerr):
		return "rpc"
	case errors.As(err, &perr):
		return "protocol"
	case errors.As(err, &cerr):
		return "configuration"
	default:
		return "other"
	}
}
