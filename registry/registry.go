// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry holds the set of configured A2A agents and routes callers
// to a [client.Client] by agent identifier.
//
// A [Registry] probes every endpoint once when it is built. Endpoints that
// answer with an agent card become live; the others are remembered as failures
// and never retried. After [New] returns the registry is immutable and safe for
// concurrent use without locking.
package registry

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/go-a2a/a2aconnect"
	"github.com/go-a2a/a2aconnect/client"
)

// DefaultProbeConcurrency bounds the startup probes running at once.
const DefaultProbeConcurrency = 4

// Endpoint is a configured agent.
type Endpoint struct {
	// ID identifies the agent for the lifetime of the process.
	ID string `json:"id"`
	// URL is the base URL of the agent.
	URL string `json:"url"`
}

// NewEndpoints returns one [Endpoint] per URL with identifiers from idgen.
// If idgen is nil, random UUIDs are used.
func NewEndpoints(urls []string, idgen func() string) []Endpoint {
	if idgen == nil {
		idgen = uuid.NewString
	}
	endpoints := make([]Endpoint, 0, len(urls))
	for _, u := range urls {
		endpoints = append(endpoints, Endpoint{ID: idgen(), URL: u})
	}
	return endpoints
}

// Option configures a [Registry].
type Option func(*options)

type options struct {
	clientOpts       []client.Option
	logger           *slog.Logger
	probeTimeout     time.Duration
	probeConcurrency int
	policy           DefaultPolicy
}

// WithClientOptions sets the options every [client.Client] is built with.
func WithClientOptions(opts ...client.Option) Option {
	return func(o *options) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}

// WithLogger sets the [*slog.Logger] for probe results.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithProbeTimeout bounds each startup probe. Zero means no bound beyond the
// context given to [New].
func WithProbeTimeout(d time.Duration) Option {
	return func(o *options) {
		o.probeTimeout = d
	}
}

// WithProbeConcurrency bounds the number of startup probes running at once.
// Values below 1 select [DefaultProbeConcurrency].
func WithProbeConcurrency(n int) Option {
	return func(o *options) {
		o.probeConcurrency = n
	}
}

// WithDefaultPolicy sets how [Registry.Resolve] picks an agent for an empty identifier.
// The default is [FirstConfigured].
func WithDefaultPolicy(policy DefaultPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// Registry is an immutable snapshot of the configured agents.
type Registry struct {
	endpoints []Endpoint
	live      []string
	clients   map[string]*client.Client
	cards     map[string]*a2a.AgentCard
	failures  map[string]error
	policy    DefaultPolicy
}

type probeResult struct {
	client *client.Client
	card   *a2a.AgentCard
	err    error
}

// New builds a [Registry] from endpoints.
//
// It fails with a [*ConfigError] if an identifier is empty or repeated.
// Otherwise every endpoint is probed by fetching its agent card; endpoints
// that fail are logged, recorded in [Registry.Failures] and left out of the
// live set. An empty endpoint list yields an empty registry. New returns the
// context error if ctx ends before probing completes.
func New(ctx context.Context, endpoints []Endpoint, opts ...Option) (*Registry, error) {
	o := &options{
		probeConcurrency: DefaultProbeConcurrency,
		policy:           FirstConfigured,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.probeConcurrency < 1 {
		o.probeConcurrency = DefaultProbeConcurrency
	}
	if o.policy == nil {
		o.policy = FirstConfigured
	}

	seen := make(map[string]bool, len(endpoints))
	for i, ep := range endpoints {
		if ep.ID == "" {
			return nil, &ConfigError{Msg: fmt.Sprintf("endpoint %d (%s) has an empty identifier", i, ep.URL)}
		}
		if seen[ep.ID] {
			return nil, &ConfigError{Msg: fmt.Sprintf("duplicate endpoint identifier %q", ep.ID)}
		}
		seen[ep.ID] = true
	}

	results := make([]probeResult, len(endpoints))
	var g errgroup.Group
	g.SetLimit(o.probeConcurrency)
	for i, ep := range endpoints {
		g.Go(func() error {
			results[i] = probe(ctx, ep, o)
			return nil
		})
	}
	// Failures are kept per endpoint in results; the group itself never fails.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := &Registry{
		endpoints: slices.Clone(endpoints),
		clients:   make(map[string]*client.Client),
		cards:     make(map[string]*a2a.AgentCard),
		failures:  make(map[string]error),
		policy:    o.policy,
	}
	for i, ep := range endpoints {
		res := results[i]
		if res.err != nil {
			o.logger.WarnContext(ctx, "agent unavailable",
				slog.String("agent", ep.ID),
				slog.String("url", ep.URL),
				slog.Any("error", res.err),
			)
			r.failures[ep.ID] = res.err
			continue
		}
		o.logger.InfoContext(ctx, "agent registered",
			slog.String("agent", ep.ID),
			slog.String("url", ep.URL),
			slog.String("name", res.card.Name),
		)
		r.live = append(r.live, ep.ID)
		r.clients[ep.ID] = res.client
		r.cards[ep.ID] = res.card
	}

	return r, nil
}

func probe(ctx context.Context, ep Endpoint, o *options) probeResult {
	c, err := client.New(ep.URL, o.clientOpts...)
	if err != nil {
		return probeResult{err: err}
	}
	if o.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.probeTimeout)
		defer cancel()
	}
	card, err := c.AgentCard(ctx)
	if err != nil {
		return probeResult{err: err}
	}
	return probeResult{client: c, card: card}
}

// Lookup returns the live client for id.
func (r *Registry) Lookup(id string) (*client.Client, bool) {
	c, ok := r.clients[id]
	return c, ok
}

// Client returns the live client for id, or a [*RoutingError] wrapping [ErrUnknownAgent].
// For an endpoint that failed its startup probe the error also wraps the probe error.
func (r *Registry) Client(id string) (*client.Client, error) {
	if c, ok := r.clients[id]; ok {
		return c, nil
	}
	if perr, ok := r.failures[id]; ok {
		return nil, &RoutingError{ID: id, Err: fmt.Errorf("%w: startup probe failed: %w", ErrUnknownAgent, perr)}
	}
	return nil, &RoutingError{ID: id, Err: ErrUnknownAgent}
}

// Resolve returns the client for id. An empty id selects the default agent.
func (r *Registry) Resolve(id string) (string, *client.Client, error) {
	if id == "" {
		def, err := r.policy.Default(slices.Clone(r.live))
		if err != nil {
			return "", nil, &RoutingError{Err: err}
		}
		id = def
	}
	c, err := r.Client(id)
	if err != nil {
		return "", nil, err
	}
	return id, c, nil
}

// All returns an iterator over the live clients in configured order.
func (r *Registry) All() iter.Seq2[string, *client.Client] {
	return func(yield func(string, *client.Client) bool) {
		for _, id := range r.live {
			if !yield(id, r.clients[id]) {
				return
			}
		}
	}
}

// IDs returns the identifiers of the live clients in configured order.
func (r *Registry) IDs() []string {
	return slices.Clone(r.live)
}

// Len returns the number of live clients.
func (r *Registry) Len() int {
	return len(r.live)
}

// Endpoints returns every configured endpoint, live or not, in configured order.
func (r *Registry) Endpoints() []Endpoint {
	return slices.Clone(r.endpoints)
}

// Card returns the agent card captured by the startup probe of id.
func (r *Registry) Card(id string) (*a2a.AgentCard, bool) {
	card, ok := r.cards[id]
	return card, ok
}

// Failures returns the probe error of every endpoint that is not live.
func (r *Registry) Failures() map[string]error {
	return maps.Clone(r.failures)
}
