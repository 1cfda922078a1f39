// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package jsonrpc2 encodes and validates the JSON-RPC envelopes exchanged with A2A agents.
package jsonrpc2

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Version is the only envelope version accepted.
const Version = "2.0"

// versionMember is the name of the envelope member carrying [Version].
const versionMember = "protocolVersion"

var (
	// ErrMalformed reports an envelope that is not a JSON object or lacks the expected version.
	ErrMalformed = errors.New("malformed envelope")

	// ErrNoPayload reports a well-formed envelope carrying neither a result nor an error.
	ErrNoPayload = errors.New("envelope carries neither result nor error")

	// ErrBadError reports a well-formed envelope whose error member is present
	// but is not an object with an integer code and a string message.
	ErrBadError = errors.New("undecodable error member")
)

// Request is an outgoing call envelope.
type Request struct {
	Version string `json:"protocolVersion"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// EncodeRequest builds the request envelope for method with the given id and params.
func EncodeRequest(id, method string, params any) ([]byte, error) {
	if method == "" {
		return nil, errors.New("jsonrpc2: empty method")
	}
	req := Request{
		Version: Version,
		ID:      id,
		Method:  method,
		Params:  params,
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("jsonrpc2: encode %s request: %w", method, err)
	}
	return data, nil
}

// Error is the error member of a response envelope.
type Error struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    jsontext.Value `json:"data,omitempty"`
}

// Response is a validated response envelope.
type Response struct {
	// ID is the id member as sent. It is not matched against the request.
	ID jsontext.Value
	// Result is nil when the member is absent and the literal null when it is present but null.
	Result jsontext.Value
	// Error is nil when the member is absent or null.
	Error *Error
}

// HasResult reports whether the envelope carried a result member, including a null one.
func (r *Response) HasResult() bool {
	return r.Result != nil
}

// DecodeResponse validates data as a response envelope.
//
// It fails with an error wrapping [ErrMalformed] when data is not a JSON object
// or when the version member is missing or not [Version]. It fails with
// [ErrBadError] when the error member is not null and does not have the
// expected shape. It fails with [ErrNoPayload] when neither a
// result nor an error is present.
func DecodeResponse(data []byte) (*Response, error) {
	var members map[string]jsontext.Value
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if members == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformed)
	}

	var version string
	if v, ok := members[versionMember]; !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformed, versionMember)
	} else if err := json.Unmarshal(v, &version); err != nil || version != Version {
		return nil, fmt.Errorf("%w: %s is %s, want %q", ErrMalformed, versionMember, v, Version)
	}

	resp := &Response{
		ID: members["id"].Clone(),
	}
	if v, ok := members["error"]; ok && !isNull(v) {
		resp.Error = new(Error)
		if err := json.Unmarshal(v, resp.Error); err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrBadError, v, err)
		}
	}
	if v, ok := members["result"]; ok {
		resp.Result = v.Clone()
	}

	if resp.Error == nil && !resp.HasResult() {
		return nil, ErrNoPayload
	}
	return resp, nil
}

// DecodeErrorBody extracts the error member from a body that may not be a valid envelope,
// such as the body of a non-2xx HTTP response. The version member is not required.
func DecodeErrorBody(data []byte) (*Error, bool) {
	var body struct {
		Error *Error `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, false
	}
	if body.Error == nil || (body.Error.Code == 0 && body.Error.Message == "") {
		return nil, false
	}
	return body.Error, true
}

func isNull(v jsontext.Value) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
