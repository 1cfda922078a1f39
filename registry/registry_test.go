// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package registry_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gocmp "github.com/google/go-cmp/cmp"

	"github.com/go-a2a/a2aconnect"
	"github.com/go-a2a/a2aconnect/client"
	"github.com/go-a2a/a2aconnect/internal/agenttest"
	"github.com/go-a2a/a2aconnect/registry"
)

func newAgentURL(t *testing.T, opts ...agenttest.Option) string {
	t.Helper()

	srv := httptest.NewServer(agenttest.New(opts...))
	t.Cleanup(srv.Close)
	return srv.URL
}

func deadURL(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestNewEndpoints(t *testing.T) {
	t.Parallel()

	n := 0
	idgen := func() string {
		n++
		return "agent-" + strconv.Itoa(n)
	}
	got := registry.NewEndpoints([]string{"http://a", "http://b"}, idgen)
	want := []registry.Endpoint{
		{ID: "agent-1", URL: "http://a"},
		{ID: "agent-2", URL: "http://b"},
	}
	if diff := gocmp.Diff(want, got); diff != "" {
		t.Errorf("NewEndpoints(): (-want +got):\n%s", diff)
	}

	random := registry.NewEndpoints([]string{"http://a", "http://a"}, nil)
	if random[0].ID == "" || random[0].ID == random[1].ID {
		t.Errorf("NewEndpoints(nil idgen) IDs = %q, %q, want distinct non-empty", random[0].ID, random[1].ID)
	}
}

func TestNewRejectsBadIdentifiers(t *testing.T) {
	t.Parallel()

	tests := map[string][]registry.Endpoint{
		"empty": {
			{ID: "a", URL: "http://a"},
			{ID: "", URL: "http://b"},
		},
		"duplicate": {
			{ID: "a", URL: "http://a"},
			{ID: "a", URL: "http://b"},
		},
	}
	for name, endpoints := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := registry.New(context.Background(), endpoints, registry.WithLogger(quietLogger()))
			var cerr *registry.ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("New() error = %v, want *ConfigError", err)
			}
		})
	}
}

func TestNewEmpty(t *testing.T) {
	t.Parallel()

	r, err := registry.New(context.Background(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if r.Len() != 0 || len(r.Endpoints()) != 0 {
		t.Errorf("empty registry: Len() = %d, Endpoints() = %v", r.Len(), r.Endpoints())
	}
	if _, _, err := r.Resolve(""); !errors.Is(err, registry.ErrNoDefaultAgent) {
		t.Errorf("Resolve(\"\") error = %v, want ErrNoDefaultAgent", err)
	}
}

func TestPartialAvailability(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	endpoints := []registry.Endpoint{
		{ID: "a", URL: newAgentURL(t)},
		{ID: "b", URL: deadURL(t)},
	}
	r, err := registry.New(context.Background(), endpoints,
		registry.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got, want := r.Len(), 1; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if _, ok := r.Lookup("a"); !ok {
		t.Error(`Lookup("a") found nothing`)
	}
	if _, ok := r.Lookup("b"); ok {
		t.Error(`Lookup("b") found a client for an unreachable agent`)
	}
	if diff := gocmp.Diff(endpoints, r.Endpoints()); diff != "" {
		t.Errorf("Endpoints(): (-want +got):\n%s", diff)
	}

	failures := r.Failures()
	if len(failures) != 1 || !client.IsNetworkError(failures["b"]) {
		t.Errorf("Failures() = %v, want a network error for b", failures)
	}
	if !strings.Contains(logs.String(), "agent=b") {
		t.Errorf("probe failure not logged:\n%s", logs.String())
	}

	_, err = r.Client("b")
	if !errors.Is(err, registry.ErrUnknownAgent) || !registry.IsRoutingError(err) {
		t.Errorf(`Client("b") error = %v, want a RoutingError wrapping ErrUnknownAgent`, err)
	}
	if card, ok := r.Card("a"); !ok || card.Name != agenttest.DefaultCard().Name {
		t.Errorf(`Card("a") = %v, %v`, card, ok)
	}
}

func TestNewWhenEveryEndpointFails(t *testing.T) {
	t.Parallel()

	endpoints := []registry.Endpoint{
		{ID: "a", URL: deadURL(t)},
		{ID: "b", URL: deadURL(t)},
		{ID: "c", URL: "ftp://agent"},
	}
	r, err := registry.New(context.Background(), endpoints,
		registry.WithLogger(quietLogger()),
		registry.WithProbeConcurrency(2),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := r.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
	failures := r.Failures()
	for _, ep := range endpoints {
		if failures[ep.ID] == nil {
			t.Errorf("Failures()[%q] = nil, want the startup error", ep.ID)
		}
	}
	if _, _, err := r.Resolve(""); !errors.Is(err, registry.ErrNoDefaultAgent) {
		t.Errorf("Resolve(\"\") error = %v, want ErrNoDefaultAgent", err)
	}
}

func TestProbeFailures(t *testing.T) {
	t.Parallel()

	hang := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(hang.Close)

	endpoints := []registry.Endpoint{
		{ID: "hang", URL: hang.URL},
		{ID: "invalid", URL: "ftp://agent"},
		{ID: "ok", URL: newAgentURL(t, agenttest.WithoutWellKnown())},
	}
	r, err := registry.New(context.Background(), endpoints,
		registry.WithLogger(quietLogger()),
		registry.WithProbeTimeout(100*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if diff := gocmp.Diff([]string{"ok"}, r.IDs()); diff != "" {
		t.Errorf("IDs(): (-want +got):\n%s", diff)
	}
	failures := r.Failures()
	if !client.IsNetworkError(failures["hang"]) {
		t.Errorf("hang failure = %v, want network error", failures["hang"])
	}
	var cerr *client.ConfigurationError
	if !errors.As(failures["invalid"], &cerr) {
		t.Errorf("invalid failure = %v, want *client.ConfigurationError", failures["invalid"])
	}
}

func TestConfiguredOrder(t *testing.T) {
	t.Parallel()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		agenttest.New().ServeHTTP(w, r)
	}))
	t.Cleanup(slow.Close)

	endpoints := []registry.Endpoint{
		{ID: "slow", URL: slow.URL},
		{ID: "fast-1", URL: newAgentURL(t)},
		{ID: "fast-2", URL: newAgentURL(t)},
	}
	r, err := registry.New(context.Background(), endpoints, registry.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	want := []string{"slow", "fast-1", "fast-2"}
	if diff := gocmp.Diff(want, r.IDs()); diff != "" {
		t.Errorf("IDs(): (-want +got):\n%s", diff)
	}
	var got []string
	for id, c := range r.All() {
		if c == nil {
			t.Errorf("All() yielded nil client for %s", id)
		}
		got = append(got, id)
	}
	if diff := gocmp.Diff(want, got); diff != "" {
		t.Errorf("All(): (-want +got):\n%s", diff)
	}
}

func TestProbeConcurrency(t *testing.T) {
	t.Parallel()

	var inflight, peak atomic.Int32
	agent := agenttest.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inflight.Add(1)
		defer inflight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		agent.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	var endpoints []registry.Endpoint
	for i := range 4 {
		endpoints = append(endpoints, registry.Endpoint{ID: strconv.Itoa(i), URL: srv.URL})
	}
	r, err := registry.New(context.Background(), endpoints,
		registry.WithLogger(quietLogger()),
		registry.WithProbeConcurrency(1),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got, want := r.Len(), 4; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if got := peak.Load(); got != 1 {
		t.Errorf("peak concurrent probes = %d, want 1", got)
	}
}

func TestNewCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := registry.New(ctx, []registry.Endpoint{{ID: "a", URL: newAgentURL(t)}}, registry.WithLogger(quietLogger()))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("New() error = %v, want context.Canceled", err)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	endpoints := []registry.Endpoint{
		{ID: "down", URL: deadURL(t)},
		{ID: "first", URL: newAgentURL(t)},
		{ID: "second", URL: newAgentURL(t)},
	}

	tests := map[string]struct {
		policy  registry.DefaultPolicy
		id      string
		wantID  string
		wantErr error
	}{
		"explicit": {
			id:     "second",
			wantID: "second",
		},
		"first configured": {
			wantID: "first",
		},
		"custom policy": {
			policy: registry.DefaultPolicyFunc(func(live []string) (string, error) {
				return live[len(live)-1], nil
			}),
			wantID: "second",
		},
		"no default": {
			policy:  registry.NoDefault,
			wantErr: registry.ErrNoDefaultAgent,
		},
		"unknown": {
			id:      "nope",
			wantErr: registry.ErrUnknownAgent,
		},
		"probe failed": {
			id:      "down",
			wantErr: registry.ErrUnknownAgent,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			opts := []registry.Option{registry.WithLogger(quietLogger())}
			if tt.policy != nil {
				opts = append(opts, registry.WithDefaultPolicy(tt.policy))
			}
			r, err := registry.New(context.Background(), endpoints, opts...)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			id, c, err := r.Resolve(tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !registry.IsRoutingError(err) {
					t.Fatalf("Resolve(%q) error = %v, want RoutingError wrapping %v", tt.id, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.id, err)
			}
			if id != tt.wantID {
				t.Errorf("Resolve(%q) id = %q, want %q", tt.id, id, tt.wantID)
			}
			if want, _ := r.Lookup(tt.wantID); c != want {
				t.Errorf("Resolve(%q) returned a different client than Lookup(%q)", tt.id, tt.wantID)
			}
		})
	}
}

func TestLiveClientsWork(t *testing.T) {
	t.Parallel()

	r, err := registry.New(context.Background(),
		registry.NewEndpoints([]string{newAgentURL(t)}, nil),
		registry.WithLogger(quietLogger()),
		registry.WithClientOptions(client.WithLogger(quietLogger())),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, c, err := r.Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	task, err := c.SendTask(context.Background(), a2a.TaskSendParams{Message: a2a.NewUserTextMessage("hi")})
	if err != nil {
		t.Fatalf("SendTask() error = %v", err)
	}
	if got, want := task.Status.State, a2a.TaskStateCompleted; got != want {
		t.Errorf("task state = %q, want %q", got, want)
	}
}
