// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package jsonrpc2

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// InstrumentationName is the otel meter and tracer name used by the client.
const InstrumentationName = "github.com/go-a2a/a2aconnect"

// Transport names recorded on the calls counter.
const (
	TransportUnary  = "unary"
	TransportStream = "stream"
)

// Reasons recorded on the dropped frames counter.
const (
	DropMalformed = "malformed"
	DropNoPayload = "no_payload"
	DropBadEvent  = "bad_event"
)

// Metrics records client RPC telemetry.
type Metrics struct {
	calls         metric.Int64Counter
	errors        metric.Int64Counter
	framesDropped metric.Int64Counter
	latency       metric.Float64Histogram
}

var (
	defaultMetrics *Metrics
	metricOnce     sync.Once
)

// DefaultMetrics returns the [Metrics] bound to the global meter provider.
func DefaultMetrics() *Metrics {
	metricOnce.Do(func() {
		defaultMetrics = NewMetrics(otel.GetMeterProvider())
	})
	return defaultMetrics
}

// NewMetrics creates the client instruments on mp.
// An instrument that cannot be created is replaced with a no-op one.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	m := mp.Meter(InstrumentationName)
	var (
		ms  Metrics
		err error
	)

	ms.calls, err = m.Int64Counter("a2a.client.calls",
		metric.WithDescription("Count of RPC calls issued"),
	)
	if err != nil {
		otel.Handle(err)
		ms.calls = noop.Int64Counter{}
	}

	ms.errors, err = m.Int64Counter("a2a.client.errors",
		metric.WithDescription("Count of failed RPC calls by error kind"),
	)
	if err != nil {
		otel.Handle(err)
		ms.errors = noop.Int64Counter{}
	}

	ms.framesDropped, err = m.Int64Counter("a2a.client.frames.dropped",
		metric.WithDescription("Count of stream frames skipped by the decoder"),
	)
	if err != nil {
		otel.Handle(err)
		ms.framesDropped = noop.Int64Counter{}
	}

	ms.latency, err = m.Float64Histogram("a2a.client.latency",
		metric.WithDescription("Time until the response headers of a call arrive"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
		ms.latency = noop.Float64Histogram{}
	}

	return &ms
}

// Call records an issued call.
func (m *Metrics) Call(ctx context.Context, method, transport string) {
	m.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("transport", transport),
	))
}

// Error records a failed call. kind names the error layer, such as "network" or "rpc".
func (m *Metrics) Error(ctx context.Context, method, kind string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("kind", kind),
	))
}

// DroppedFrame records a skipped stream frame.
func (m *Metrics) DroppedFrame(ctx context.Context, reason string) {
	m.framesDropped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// Latency records the round trip time of a call.
func (m *Metrics) Latency(ctx context.Context, method string, d time.Duration) {
	m.latency.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
	))
}
