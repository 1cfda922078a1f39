// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/a2aconnect"
	"github.com/go-a2a/a2aconnect/internal/jsonrpc2"
)

// DefaultUserAgent is sent when no [WithUserAgent] option is given.
const DefaultUserAgent = "a2aconnect/" + a2a.Version

// Option configures a [Client].
type Option func(*clientConfig)

type clientConfig struct {
	httpClient   *http.Client
	logger       *slog.Logger
	tracer       trace.Tracer
	metrics      *jsonrpc2.Metrics
	newID        func() string
	userAgent    string
	header       http.Header
	interceptors []Interceptor
}

func applyClientOptions(opts ...Option) *clientConfig {
	cfg := &clientConfig{
		userAgent: DefaultUserAgent,
		header:    make(http.Header),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.httpClient == nil {
		cfg.httpClient = http.DefaultClient
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer(jsonrpc2.InstrumentationName)
	}
	if cfg.metrics == nil {
		cfg.metrics = jsonrpc2.DefaultMetrics()
	}
	if cfg.newID == nil {
		cfg.newID = uuid.NewString
	}
	return cfg
}

// WithHTTPClient sets the [*http.Client] used for every request.
//
// The client imposes no timeout of its own. Set one on hc, or on the request
// context, to bound how long a call may block.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// WithLogger sets the [*slog.Logger] for the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithTracer sets the [trace.Tracer] for the [Client].
func WithTracer(tracer trace.Tracer) Option {
	return func(c *clientConfig) {
		c.tracer = tracer
	}
}

// WithMeterProvider records client metrics on mp instead of the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *clientConfig) {
		c.metrics = jsonrpc2.NewMetrics(mp)
	}
}

// WithIDGenerator sets the source of request IDs and of task IDs the caller leaves empty.
// Every call must return a fresh, non-empty string.
func WithIDGenerator(fn func() string) Option {
	return func(c *clientConfig) {
		c.newID = fn
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *clientConfig) {
		c.userAgent = userAgent
	}
}

// WithHeader adds a header sent with every request.
// It cannot override the protocol headers Content-Type and Accept.
func WithHeader(key, value string) Option {
	return func(c *clientConfig) {
		c.header.Add(key, value)
	}
}

// WithInterceptors appends interceptors around every HTTP exchange.
// The first interceptor is the outermost.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(c *clientConfig) {
		c.interceptors = append(c.interceptors, interceptors...)
	}
}
