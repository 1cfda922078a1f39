// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/a2aconnect"
	"github.com/go-a2a/a2aconnect/client/internal/sse"
	"github.com/go-a2a/a2aconnect/internal/jsonrpc2"
	"github.com/go-a2a/a2aconnect/internal/pool"
)

// ErrStreamClosed is returned by [Stream.Recv] after [Stream.Close].
var ErrStreamClosed = errors.New("a2a: stream closed")

// Stream is a lazy, single-pass sequence of task updates read from an event stream.
//
// Events are returned in arrival order. A frame that cannot be decoded is
// logged and skipped; a frame carrying an error ends the stream with a
// [*RPCError]. The response body is released exactly once, when the stream
// ends, fails or is closed, whichever comes first.
//
// A Stream is not safe for concurrent use. Cancel the context passed to the
// call that opened it to abort a blocked [Stream.Recv] from another goroutine.
type Stream struct {
	ctx    context.Context
	client *Client
	span   trace.Span
	method string
	body   io.ReadCloser
	dec    *sse.Decoder

	err     error
	dropped int

	closeOnce sync.Once
	closeErr  error
}

func (c *Client) openStream(ctx context.Context, op, method, taskID string, params any) (_ *Stream, err error) {
	ctx, span := c.startSpan(ctx, op, method, taskID)
	defer func() {
		if err != nil {
			c.endSpan(ctx, span, method, err)
		}
	}()

	resp, err := c.post(ctx, method, params, a2a.ContentTypeEventStream, jsonrpc2.TransportStream)
	if err != nil {
		return nil, err
	}

	// A rejected request is answered with a plain JSON body instead of a stream.
	if resp.StatusCode < 200 || resp.StatusCode > 299 || isJSON(resp) {
		defer resp.Body.Close()

		buf := pool.Bytes.Get()
		defer pool.Bytes.Put(buf)
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			return nil, &NetworkError{Msg: fmt.Sprintf("read %s response", method), Err: err}
		}
		if _, err := decodeUnary(method, resp.StatusCode, buf.Bytes()); err != nil {
			return nil, err
		}
		return nil, &ProtocolError{Msg: fmt.Sprintf("%s: expected %s response, got %q", method, a2a.ContentTypeEventStream, resp.Header.Get("Content-Type"))}
	}

	return &Stream{
		ctx:    ctx,
		client: c,
		span:   span,
		method: method,
		body:   resp.Body,
		dec:    sse.NewDecoder(resp.Body),
	}, nil
}

// Recv returns the next event.
//
// It returns [io.EOF] when the agent ends the stream, a [*RPCError] when the
// agent reports an error, a [*ProtocolError] when that error cannot be
// decoded, and a [*NetworkError] when reading fails. After any
// error the stream is released and every later call returns the same error.
func (s *Stream) Recv() (*a2a.StreamEvent, error) {
	if s.err != nil {
		return nil, s.err
	}

	for {
		payload, err := s.dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if tail := bytes.TrimSpace(s.dec.Buffered()); len(tail) > 0 {
					s.client.logger.WarnContext(s.ctx, "a2a stream ended with truncated trailing data",
						slog.String("url", s.client.baseURL),
						slog.String("method", s.method),
						slog.Int("bytes", len(tail)),
					)
				}
				return nil, s.finish(io.EOF)
			}
			return nil, s.finish(&NetworkError{Msg: fmt.Sprintf("read %s stream", s.method), Err: err})
		}

		ev, err := decodeFrame(payload)
		if err != nil {
			var ferr *FrameError
			if errors.As(err, &ferr) {
				s.drop(ferr)
				continue
			}
			return nil, s.finish(err)
		}
		return ev, nil
	}
}

// All returns the remaining events as an iterator.
//
// Iteration stops after the last event without yielding [io.EOF], or after
// yielding the first error. Breaking out of the loop closes the stream.
func (s *Stream) All() iter.Seq2[*a2a.StreamEvent, error] {
	return func(yield func(*a2a.StreamEvent, error) bool) {
		defer s.Close()

		for {
			ev, err := s.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(nil, err)
				}
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// Dropped returns the number of frames skipped so far.
func (s *Stream) Dropped() int {
	return s.dropped
}

// Close releases the response body. It is safe to call more than once.
func (s *Stream) Close() error {
	s.release(nil)
	if s.err == nil {
		s.err = ErrStreamClosed
	}
	return s.closeErr
}

func (s *Stream) finish(err error) error {
	s.err = err
	s.release(err)
	return err
}

func (s *Stream) release(err error) {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
		if errors.Is(err, io.EOF) {
			err = nil
		}
		s.client.endSpan(s.ctx, s.span, s.method, err)
	})
}

func (s *Stream) drop(ferr *FrameError) {
	s.dropped++
	s.client.metrics.DroppedFrame(s.ctx, ferr.Reason)
	s.client.logger.WarnContext(s.ctx, "dropping a2a stream frame",
		slog.String("url", s.client.baseURL),
		slog.String("method", s.method),
		slog.String("reason", ferr.Reason),
		slog.Any("error", ferr.Err),
	)
}

// decodeFrame turns one frame payload into an event.
// Undecodable frames are reported as a [*FrameError]. An error member is
// reported as a [*RPCError], or as a [*ProtocolError] when it does not decode.
func decodeFrame(payload []byte) (*a2a.StreamEvent, error) {
	env, err := jsonrpc2.DecodeResponse(payload)
	if err != nil {
		if errors.Is(err, jsonrpc2.ErrBadError) {
			return nil, &ProtocolError{Msg: "decode stream error frame", Err: err}
		}
		reason := jsonrpc2.DropMalformed
		if errors.Is(err, jsonrpc2.ErrNoPayload) {
			reason = jsonrpc2.DropNoPayload
		}
		return nil, &FrameError{Reason: reason, Payload: payload, Err: err}
	}
	if env.Error != nil {
		return nil, newRPCError(env.Error)
	}

	ev, err := a2a.DecodeStreamEvent(env.Result)
	if err != nil {
		return nil, &FrameError{Reason: jsonrpc2.DropBadEvent, Payload: payload, Err: err}
	}
	return ev, nil
}
