// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package agenttest provides a scriptable in-memory A2A agent for tests and local development.
package agenttest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/go-a2a/a2aconnect"
)

// Request is a request received by the [Agent].
type Request struct {
	HTTPMethod string
	Path       string
	Accept     string
	// RPCMethod is the envelope method of a POST, empty otherwise.
	RPCMethod string
	Body      []byte
}

// Agent is a fake A2A agent.
//
// It echoes submitted messages back, keeps tasks in memory for get and cancel,
// and streams a working status, an artifact and a final completed status for
// subscriptions. Every request is recorded.
type Agent struct {
	card             a2a.AgentCard
	disableWellKnown bool
	sendState        a2a.TaskState
	streamDelay      time.Duration
	streamFrames     []string
	logger           *slog.Logger
	router           chi.Router

	mu       sync.Mutex
	tasks    map[string]*a2a.Task
	requests []Request
}

var _ http.Handler = (*Agent)(nil)

// Option configures an [Agent].
type Option func(*Agent)

// WithCard sets the card served on both discovery paths.
func WithCard(card a2a.AgentCard) Option {
	return func(a *Agent) {
		a.card = card
	}
}

// WithoutWellKnown makes the well-known card path answer 404 so that clients
// have to use the fallback path.
func WithoutWellKnown() Option {
	return func(a *Agent) {
		a.disableWellKnown = true
	}
}

// WithSendState sets the state of tasks created by tasks/send.
// The default is [a2a.TaskStateCompleted].
func WithSendState(state a2a.TaskState) Option {
	return func(a *Agent) {
		a.sendState = state
	}
}

// WithStreamDelay pauses between streamed frames.
func WithStreamDelay(d time.Duration) Option {
	return func(a *Agent) {
		a.streamDelay = d
	}
}

// WithStreamFrames replaces the generated subscription stream with raw frame
// payloads, each written as one "data: " frame.
func WithStreamFrames(frames ...string) Option {
	return func(a *Agent) {
		a.streamFrames = frames
	}
}

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// DefaultCard returns the card served when no [WithCard] option is given.
func DefaultCard() a2a.AgentCard {
	return a2a.AgentCard{
		Name:        "Echo Agent",
		Description: "Echoes every message back.",
		URL:         "http://localhost",
		Version:     a2a.Version,
		Capabilities: a2a.AgentCapabilities{
			Streaming: true,
		},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills: []a2a.AgentSkill{
			{ID: "echo", Name: "Echo", Description: "Repeats the input."},
		},
	}
}

// New returns an [Agent].
func New(opts ...Option) *Agent {
	a := &Agent{
		card:      DefaultCard(),
		sendState: a2a.TaskStateCompleted,
		logger:    slog.Default(),
		tasks:     make(map[string]*a2a.Task),
	}
	for _, opt := range opts {
		opt(a)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.record)
	r.Get(a2a.AgentCardWellKnownPath, a.handleWellKnownCard)
	r.Get(a2a.AgentCardFallbackPath, a.handleCard)
	r.Post("/", a.handleRPC)
	a.router = r

	return a
}

// ServeHTTP implements [http.Handler].
func (a *Agent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Requests returns the requests received so far, oldest first.
func (a *Agent) Requests() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.requests)
}

// Task returns a copy of a stored task.
func (a *Agent) Task(id string) (a2a.Task, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.tasks[id]
	if !ok {
		return a2a.Task{}, false
	}
	return *t, true
}

func (a *Agent) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		req := Request{
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
			Accept:     r.Header.Get("Accept"),
			Body:       body,
		}
		if r.Method == http.MethodPost {
			var env struct {
				Method string `json:"method"`
			}
			if json.Unmarshal(body, &env) == nil {
				req.RPCMethod = env.Method
			}
		}

		a.mu.Lock()
		a.requests = append(a.requests, req)
		a.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (a *Agent) handleWellKnownCard(w http.ResponseWriter, r *http.Request) {
	if a.disableWellKnown {
		http.NotFound(w, r)
		return
	}
	a.handleCard(w, r)
}

func (a *Agent) handleCard(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(r.Context(), w, http.StatusOK, a.card)
}

type request struct {
	Version string         `json:"protocolVersion"`
	ID      jsontext.Value `json:"id"`
	Method  string         `json:"method"`
	Params  jsontext.Value `json:"params"`
}

type resultResponse struct {
	Version string         `json:"protocolVersion"`
	ID      jsontext.Value `json:"id,omitzero"`
	Result  any            `json:"result"`
}

type errorResponse struct {
	Version string         `json:"protocolVersion"`
	ID      jsontext.Value `json:"id,omitzero"`
	Error   rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (a *Agent) handleRPC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req request
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		a.writeError(ctx, w, http.StatusBadRequest, nil, a2a.ErrorCodeParse, "Invalid JSON payload")
		return
	}
	if req.Version != "2.0" {
		a.writeError(ctx, w, http.StatusBadRequest, req.ID, a2a.ErrorCodeInvalidRequest, "Request payload validation error")
		return
	}

	switch req.Method {
	case a2a.MethodTasksSend:
		var params a2a.TaskSendParams
		if !a.decodeParams(ctx, w, req, &params) {
			return
		}
		task := a.createTask(params, a.sendState)
		a.writeResult(ctx, w, req.ID, task)

	case a2a.MethodTasksGet:
		var params a2a.TaskQueryParams
		if !a.decodeParams(ctx, w, req, &params) {
			return
		}
		task, ok := a.Task(params.ID)
		if !ok {
			a.writeError(ctx, w, http.StatusOK, req.ID, a2a.ErrorCodeTaskNotFound, "Task not found")
			return
		}
		if n := params.HistoryLength; n != nil && *n >= 0 && *n < len(task.History) {
			task.History = task.History[len(task.History)-*n:]
		}
		a.writeResult(ctx, w, req.ID, task)

	case a2a.MethodTasksCancel:
		var params a2a.TaskIDParams
		if !a.decodeParams(ctx, w, req, &params) {
			return
		}
		task, code := a.cancelTask(params.ID)
		switch code {
		case a2a.ErrorCodeTaskNotFound:
			a.writeError(ctx, w, http.StatusOK, req.ID, code, "Task not found")
		case a2a.ErrorCodeTaskNotCancelable:
			a.writeError(ctx, w, http.StatusOK, req.ID, code, "Task cannot be canceled")
		default:
			a.writeResult(ctx, w, req.ID, task)
		}

	case a2a.MethodTasksSendSubscribe:
		var params a2a.TaskSendParams
		if !a.decodeParams(ctx, w, req, &params) {
			return
		}
		task := a.createTask(params, a2a.TaskStateWorking)
		a.stream(ctx, w, req.ID, a.subscribeFrames(task))

	case a2a.MethodTasksResubscribe:
		var params a2a.TaskQueryParams
		if !a.decodeParams(ctx, w, req, &params) {
			return
		}
		task, ok := a.Task(params.ID)
		if !ok {
			a.writeError(ctx, w, http.StatusOK, req.ID, a2a.ErrorCodeTaskNotFound, "Task not found")
			return
		}
		a.stream(ctx, w, req.ID, a.resubscribeFrames(task))

	default:
		a.writeError(ctx, w, http.StatusOK, req.ID, a2a.ErrorCodeMethodNotFound, "Method not found")
	}
}

func (a *Agent) decodeParams(ctx context.Context, w http.ResponseWriter, req request, v any) bool {
	if err := json.Unmarshal(req.Params, v); err != nil {
		a.writeError(ctx, w, http.StatusOK, req.ID, a2a.ErrorCodeInvalidParams, "Invalid parameters")
		return false
	}
	return true
}

func (a *Agent) createTask(params a2a.TaskSendParams, state a2a.TaskState) a2a.Task {
	reply := a2a.Message{
		Role:  a2a.RoleAgent,
		Parts: []a2a.Part{a2a.NewTextPart(params.Message.Text())},
	}
	task := &a2a.Task{
		ID:        params.ID,
		SessionID: params.SessionID,
		Status: a2a.TaskStatus{
			State:     state,
			Timestamp: now(),
		},
		History:  []a2a.Message{params.Message},
		Metadata: params.Metadata,
	}
	if state == a2a.TaskStateCompleted {
		task.Status.Message = &reply
		task.Artifacts = []a2a.Artifact{{Parts: reply.Parts}}
		task.History = append(task.History, reply)
	}

	a.mu.Lock()
	a.tasks[task.ID] = task
	a.mu.Unlock()

	return *task
}

func (a *Agent) cancelTask(id string) (a2a.Task, int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	task, ok := a.tasks[id]
	if !ok {
		return a2a.Task{}, a2a.ErrorCodeTaskNotFound
	}
	if task.Status.State.IsTerminal() {
		return a2a.Task{}, a2a.ErrorCodeTaskNotCancelable
	}
	task.Status = a2a.TaskStatus{
		State:     a2a.TaskStateCanceled,
		Timestamp: now(),
	}
	return *task, 0
}

// complete marks a streamed task as completed once its final frame is written.
func (a *Agent) complete(id string, artifact a2a.Artifact, status a2a.TaskStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if task, ok := a.tasks[id]; ok {
		task.Status = status
		task.Artifacts = append(task.Artifacts, artifact)
	}
}

func (a *Agent) subscribeFrames(task a2a.Task) []any {
	reply := a2a.Message{
		Role:  a2a.RoleAgent,
		Parts: []a2a.Part{a2a.NewTextPart(task.History[0].Text())},
	}
	artifact := a2a.Artifact{Parts: reply.Parts}
	done := a2a.TaskStatus{
		State:     a2a.TaskStateCompleted,
		Message:   &reply,
		Timestamp: now(),
	}
	a.complete(task.ID, artifact, done)

	return []any{
		a2a.TaskStatusUpdateEvent{ID: task.ID, Status: task.Status},
		a2a.TaskArtifactUpdateEvent{ID: task.ID, Artifact: artifact},
		a2a.TaskStatusUpdateEvent{ID: task.ID, Status: done, Final: true},
	}
}

func (a *Agent) resubscribeFrames(task a2a.Task) []any {
	return []any{
		a2a.TaskStatusUpdateEvent{ID: task.ID, Status: task.Status, Final: task.Status.State.IsTerminal()},
	}
}

func (a *Agent) stream(ctx context.Context, w http.ResponseWriter, id jsontext.Value, events []any) {
	w.Header().Set("Content-Type", a2a.ContentTypeEventStream)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	frames := a.streamFrames
	if frames == nil {
		for _, ev := range events {
			data, err := json.Marshal(resultResponse{Version: "2.0", ID: id, Result: ev})
			if err != nil {
				a.logger.ErrorContext(ctx, "encode stream frame", slog.Any("error", err))
				return
			}
			frames = append(frames, string(data))
		}
	}

	for i, frame := range frames {
		if i > 0 && a.streamDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(a.streamDelay):
			}
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", frame); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (a *Agent) writeResult(ctx context.Context, w http.ResponseWriter, id jsontext.Value, result any) {
	a.writeJSON(ctx, w, http.StatusOK, resultResponse{Version: "2.0", ID: id, Result: result})
}

func (a *Agent) writeError(ctx context.Context, w http.ResponseWriter, status int, id jsontext.Value, code int, message string) {
	a.writeJSON(ctx, w, status, errorResponse{
		Version: "2.0",
		ID:      id,
		Error:   rpcError{Code: code, Message: message},
	})
}

func (a *Agent) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", a2a.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.MarshalWrite(w, v); err != nil {
		a.logger.ErrorContext(ctx, "write response", slog.Any("error", err))
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
