// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package client implements an A2A protocol client bound to a single agent.
package client

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/a2aconnect"
	"github.com/go-a2a/a2aconnect/internal/jsonrpc2"
	"github.com/go-a2a/a2aconnect/internal/pool"
)

// Client talks to one A2A agent.
//
// A Client holds no per-task state: every call builds a fresh request with a
// fresh request ID and nothing is cached between calls. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *jsonrpc2.Metrics
	newID      func() string
	userAgent  string
	header     http.Header
	invoke     Invoker
}

// New returns a [Client] for the agent at baseURL.
//
// Trailing slashes are stripped from baseURL. It fails with a
// [*ConfigurationError] if baseURL is not an absolute http or https URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	normalized := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if normalized == "" {
		return nil, &ConfigurationError{Msg: "empty agent URL"}
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return nil, &ConfigurationError{Msg: fmt.Sprintf("parse agent URL %q", baseURL), Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &ConfigurationError{Msg: fmt.Sprintf("agent URL %q: scheme must be http or https", baseURL)}
	}
	if u.Host == "" {
		return nil, &ConfigurationError{Msg: fmt.Sprintf("agent URL %q: missing host", baseURL)}
	}

	cfg := applyClientOptions(opts...)
	c := &Client{
		baseURL:    normalized,
		httpClient: cfg.httpClient,
		logger:     cfg.logger,
		tracer:     cfg.tracer,
		metrics:    cfg.metrics,
		newID:      cfg.newID,
		userAgent:  cfg.userAgent,
		header:     cfg.header,
	}
	c.invoke = chainInterceptors(cfg.interceptors, func(ctx context.Context, req *http.Request) (*http.Response, error) {
		return c.httpClient.Do(req)
	})

	return c, nil
}

// BaseURL returns the normalized base URL of the agent.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendTask submits a task with the tasks/send method.
//
// If params.ID is empty a fresh ID is generated. The returned task is nil if
// the agent answered with a null result.
func (c *Client) SendTask(ctx context.Context, params a2a.TaskSendParams) (_ *a2a.Task, err error) {
	if params.ID == "" {
		params.ID = c.newID()
	}
	ctx, span := c.startSpan(ctx, "SendTask", a2a.MethodTasksSend, params.ID)
	defer func() { c.endSpan(ctx, span, a2a.MethodTasksSend, err) }()

	return c.taskCall(ctx, a2a.MethodTasksSend, params)
}

// GetTask retrieves a task with the tasks/get method.
// The returned task is nil if the agent answered with a null result.
func (c *Client) GetTask(ctx context.Context, params a2a.TaskQueryParams) (_ *a2a.Task, err error) {
	ctx, span := c.startSpan(ctx, "GetTask", a2a.MethodTasksGet, params.ID)
	defer func() { c.endSpan(ctx, span, a2a.MethodTasksGet, err) }()

	return c.taskCall(ctx, a2a.MethodTasksGet, params)
}

// CancelTask cancels a task with the tasks/cancel method.
// The returned task is nil if the agent answered with a null result.
func (c *Client) CancelTask(ctx context.Context, params a2a.TaskIDParams) (_ *a2a.Task, err error) {
	ctx, span := c.startSpan(ctx, "CancelTask", a2a.MethodTasksCancel, params.ID)
	defer func() { c.endSpan(ctx, span, a2a.MethodTasksCancel, err) }()

	return c.taskCall(ctx, a2a.MethodTasksCancel, params)
}

// SendTaskSubscribe submits a task with the tasks/sendSubscribe method and
// returns the stream of its updates.
//
// If params.ID is empty a fresh ID is generated. Failures to reach the agent
// or a rejected request are returned here; once a [Stream] is returned, later
// failures surface through it. The caller must consume the stream to the end
// or close it.
func (c *Client) SendTaskSubscribe(ctx context.Context, params a2a.TaskSendParams) (*Stream, error) {
	if params.ID == "" {
		params.ID = c.newID()
	}
	return c.openStream(ctx, "SendTaskSubscribe", a2a.MethodTasksSendSubscribe, params.ID, params)
}

// ResubscribeTask resumes watching a task with the tasks/resubscribe method.
// Which updates are sent again is up to the agent.
func (c *Client) ResubscribeTask(ctx context.Context, params a2a.TaskQueryParams) (*Stream, error) {
	return c.openStream(ctx, "ResubscribeTask", a2a.MethodTasksResubscribe, params.ID, params)
}

func (c *Client) taskCall(ctx context.Context, method string, params any) (*a2a.Task, error) {
	result, err := c.unary(ctx, method, params)
	if err != nil {
		return nil, err
	}
	if isNull(result) {
		return nil, nil
	}

	var task a2a.Task
	if err := json.Unmarshal(result, &task); err != nil {
		return nil, &ProtocolError{Msg: fmt.Sprintf("decode %s result", method), Err: err}
	}
	return &task, nil
}

// unary issues method over the request/reply transport and returns the raw result.
func (c *Client) unary(ctx context.Context, method string, params any) (jsontext.Value, error) {
	resp, err := c.post(ctx, method, params, a2a.ContentTypeJSON, jsonrpc2.TransportUnary)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	buf := pool.Bytes.Get()
	defer pool.Bytes.Put(buf)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, &NetworkError{Msg: fmt.Sprintf("read %s response", method), Err: err}
	}

	return decodeUnary(method, resp.StatusCode, buf.Bytes())
}

// decodeUnary unwraps a request/reply body. An error member always takes
// precedence over a result.
func decodeUnary(method string, status int, body []byte) (jsontext.Value, error) {
	if status < 200 || status > 299 {
		if rpcErr, ok := jsonrpc2.DecodeErrorBody(body); ok {
			return nil, newRPCError(rpcErr)
		}
		return nil, &HTTPError{StatusCode: status, Body: bytes.Clone(body)}
	}

	env, err := jsonrpc2.DecodeResponse(body)
	if err != nil {
		return nil, &ProtocolError{Msg: fmt.Sprintf("decode %s response", method), Err: err}
	}
	if env.Error != nil {
		return nil, newRPCError(env.Error)
	}
	return env.Result, nil
}

// post sends the request envelope for method and returns the response with its body unread.
func (c *Client) post(ctx context.Context, method string, params any, accept, transport string) (*http.Response, error) {
	id := c.newID()
	payload, err := jsonrpc2.EncodeRequest(id, method, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &ConfigurationError{Msg: "create request", Err: err}
	}
	c.setHeaders(req, accept)
	if accept == a2a.ContentTypeEventStream {
		req.Header.Set("Cache-Control", "no-cache")
	}

	c.logger.DebugContext(ctx, "a2a request",
		slog.String("url", c.baseURL),
		slog.String("method", method),
		slog.String("request_id", id),
	)

	c.metrics.Call(ctx, method, transport)
	start := time.Now()
	resp, err := c.invoke(ctx, req)
	c.metrics.Latency(ctx, method, time.Since(start))
	if err != nil {
		return nil, &NetworkError{Msg: fmt.Sprintf("%s %s", method, c.baseURL), Err: err}
	}
	return resp, nil
}

func (c *Client) setHeaders(req *http.Request, accept string) {
	for key, values := range c.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Method == http.MethodPost {
		req.Header.Set("Content-Type", a2a.ContentTypeJSON)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
}

func (c *Client) startSpan(ctx context.Context, op, method, taskID string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "a2a.client."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("a2a.method", method),
			attribute.String("a2a.task_id", taskID),
			attribute.String("url.full", c.baseURL),
		),
	)
}

func (c *Client) endSpan(ctx context.Context, span trace.Span, method string, err error) {
	if err != nil {
		c.metrics.Error(ctx, method, errorKind(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func isNull(v jsontext.Value) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func isJSON(resp *http.Response) bool {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return err == nil && mediaType == a2a.ContentTypeJSON
}
