// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package jsonrpc2_test

import (
	"errors"
	"testing"

	"github.com/go-json-experiment/json/jsontext"
	gocmp "github.com/google/go-cmp/cmp"

	"github.com/go-a2a/a2aconnect/internal/jsonrpc2"
)

func TestEncodeRequest(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		id      string
		method  string
		params  any
		want    string
		wantErr bool
	}{
		"with params": {
			id:     "req-1",
			method: "tasks/get",
			params: map[string]any{"id": "t1"},
			want:   `{"protocolVersion":"2.0","id":"req-1","method":"tasks/get","params":{"id":"t1"}}`,
		},
		"without params": {
			id:     "req-2",
			method: "tasks/cancel",
			want:   `{"protocolVersion":"2.0","id":"req-2","method":"tasks/cancel"}`,
		},
		"empty method": {
			id:      "req-3",
			wantErr: true,
		},
		"unencodable params": {
			id:      "req-4",
			method:  "tasks/send",
			params:  make(chan int),
			wantErr: true,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := jsonrpc2.EncodeRequest(tt.id, tt.method, tt.params)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EncodeRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := gocmp.Diff(tt.want, string(got)); diff != "" {
				t.Errorf("EncodeRequest(): (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeResponse(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		data       string
		wantResult jsontext.Value
		wantError  *jsonrpc2.Error
		wantErr    error
	}{
		"result": {
			data:       `{"protocolVersion":"2.0","id":"1","result":{"id":"t1"}}`,
			wantResult: jsontext.Value(`{"id":"t1"}`),
		},
		"null result": {
			data:       `{"protocolVersion":"2.0","id":"1","result":null}`,
			wantResult: jsontext.Value(`null`),
		},
		"error": {
			data:      `{"protocolVersion":"2.0","id":"1","error":{"code":-32001,"message":"Task not found"}}`,
			wantError: &jsonrpc2.Error{Code: -32001, Message: "Task not found"},
		},
		"error with data": {
			data:      `{"protocolVersion":"2.0","id":"1","error":{"code":-32603,"message":"boom","data":{"trace":"x"}}}`,
			wantError: &jsonrpc2.Error{Code: -32603, Message: "boom", Data: jsontext.Value(`{"trace":"x"}`)},
		},
		"error and result": {
			data:       `{"protocolVersion":"2.0","id":"1","result":{"id":"t1"},"error":{"code":-32603,"message":"boom"}}`,
			wantResult: jsontext.Value(`{"id":"t1"}`),
			wantError:  &jsonrpc2.Error{Code: -32603, Message: "boom"},
		},
		"null error with result": {
			data:       `{"protocolVersion":"2.0","id":"1","result":{},"error":null}`,
			wantResult: jsontext.Value(`{}`),
		},
		"neither": {
			data:    `{"protocolVersion":"2.0","id":"1"}`,
			wantErr: jsonrpc2.ErrNoPayload,
		},
		"null error only": {
			data:    `{"protocolVersion":"2.0","id":"1","error":null}`,
			wantErr: jsonrpc2.ErrNoPayload,
		},
		"missing version": {
			data:    `{"id":"1","result":{}}`,
			wantErr: jsonrpc2.ErrMalformed,
		},
		"jsonrpc member instead of version": {
			data:    `{"jsonrpc":"2.0","id":"1","result":{}}`,
			wantErr: jsonrpc2.ErrMalformed,
		},
		"wrong version": {
			data:    `{"protocolVersion":"1.0","id":"1","result":{}}`,
			wantErr: jsonrpc2.ErrMalformed,
		},
		"numeric version": {
			data:    `{"protocolVersion":2.0,"id":"1","result":{}}`,
			wantErr: jsonrpc2.ErrMalformed,
		},
		"array": {
			data:    `[{"protocolVersion":"2.0"}]`,
			wantErr: jsonrpc2.ErrMalformed,
		},
		"null": {
			data:    `null`,
			wantErr: jsonrpc2.ErrMalformed,
		},
		"not json": {
			data:    `<html>oops</html>`,
			wantErr: jsonrpc2.ErrMalformed,
		},
		"string error": {
			data:    `{"protocolVersion":"2.0","id":"1","error":"boom"}`,
			wantErr: jsonrpc2.ErrBadError,
		},
		"string error code": {
			data:    `{"protocolVersion":"2.0","id":"1","error":{"code":"E1","message":"boom"}}`,
			wantErr: jsonrpc2.ErrBadError,
		},
		"fractional error code": {
			data:    `{"protocolVersion":"2.0","id":"1","error":{"code":-32603.5,"message":"boom"}}`,
			wantErr: jsonrpc2.ErrBadError,
		},
		"bad error with result": {
			data:    `{"protocolVersion":"2.0","id":"1","result":{},"error":[1]}`,
			wantErr: jsonrpc2.ErrBadError,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			resp, err := jsonrpc2.DecodeResponse([]byte(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeResponse() error = %v, want %v", err, tt.wantErr)
				}
				if tt.wantErr == jsonrpc2.ErrBadError && errors.Is(err, jsonrpc2.ErrMalformed) {
					t.Errorf("DecodeResponse() error = %v, want it distinct from ErrMalformed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeResponse() error = %v", err)
			}

			if diff := gocmp.Diff(string(tt.wantResult), string(resp.Result)); diff != "" {
				t.Errorf("Result: (-want +got):\n%s", diff)
			}
			if got, want := resp.HasResult(), tt.wantResult != nil; got != want {
				t.Errorf("HasResult() = %v, want %v", got, want)
			}
			if diff := gocmp.Diff(tt.wantError, resp.Error); diff != "" {
				t.Errorf("Error: (-want +got):\n%s", diff)
			}
			if got, want := string(resp.ID), `"1"`; got != want {
				t.Errorf("ID = %s, want %s", got, want)
			}
		})
	}
}

func TestDecodeErrorBody(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		data   string
		want   *jsonrpc2.Error
		wantOK bool
	}{
		"envelope": {
			data:   `{"protocolVersion":"2.0","id":"1","error":{"code":-32600,"message":"Invalid request"}}`,
			want:   &jsonrpc2.Error{Code: -32600, Message: "Invalid request"},
			wantOK: true,
		},
		"bare error without version": {
			data:   `{"error":{"code":-32601,"message":"Method not found"}}`,
			want:   &jsonrpc2.Error{Code: -32601, Message: "Method not found"},
			wantOK: true,
		},
		"empty error": {
			data: `{"error":{}}`,
		},
		"string error": {
			data: `{"error":"denied"}`,
		},
		"html": {
			data: `<h1>502 Bad Gateway</h1>`,
		},
		"empty body": {
			data: ``,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok := jsonrpc2.DecodeErrorBody([]byte(tt.data))
			if ok != tt.wantOK {
				t.Fatalf("DecodeErrorBody() ok = %v, want %v", ok, tt.wantOK)
			}
			if diff := gocmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DecodeErrorBody(): (-want +got):\n%s", diff)
			}
		})
	}
}
