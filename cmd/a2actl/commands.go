// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/go-a2a/a2aconnect"
	"github.com/go-a2a/a2aconnect/client"
)

// AgentsCmd lists the configured agents.
type AgentsCmd struct{}

type agentStatus struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Live  bool   `json:"live"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
}

func (c *AgentsCmd) Run(a *app) error {
	failures := a.registry.Failures()
	agents := make([]agentStatus, 0, len(a.registry.Endpoints()))
	for _, ep := range a.registry.Endpoints() {
		st := agentStatus{ID: ep.ID, URL: ep.URL}
		if card, ok := a.registry.Card(ep.ID); ok {
			st.Live = true
			st.Name = card.Name
		}
		if err, ok := failures[ep.ID]; ok {
			st.Error = err.Error()
		}
		agents = append(agents, st)
	}
	return a.out.JSON(agents)
}

// CardCmd fetches the agent card.
type CardCmd struct{}

func (c *CardCmd) Run(ctx context.Context, a *app) error {
	cl, err := a.client()
	if err != nil {
		return err
	}
	card, err := cl.AgentCard(ctx)
	if err != nil {
		return err
	}
	return a.out.JSON(card)
}

// SupportsCmd reports whether the agent declares a capability.
type SupportsCmd struct {
	Capability string `arg:"" help:"Capability name, such as streaming or pushNotifications."`
}

func (c *SupportsCmd) Run(ctx context.Context, a *app) error {
	cl, err := a.client()
	if err != nil {
		return err
	}
	return a.out.JSON(map[string]any{
		"capability": c.Capability,
		"supported":  cl.Supports(ctx, c.Capability),
	})
}

// SendCmd sends a message as a new task.
type SendCmd struct {
	Text      string `arg:"" help:"Message text."`
	TaskID    string `name:"task-id" help:"Task ID. Generated when empty."`
	SessionID string `name:"session-id" help:"Session ID."`
}

func (c *SendCmd) Run(ctx context.Context, a *app) error {
	cl, err := a.client()
	if err != nil {
		return err
	}
	task, err := cl.SendTask(ctx, a2a.TaskSendParams{
		ID:        c.TaskID,
		SessionID: c.SessionID,
		Message:   a2a.NewUserTextMessage(c.Text),
	})
	if err != nil {
		return err
	}
	return a.out.Task(task)
}

// GetCmd gets a task.
type GetCmd struct {
	TaskID        string `arg:"" name:"task-id" help:"Task ID."`
	HistoryLength int    `name:"history-length" help:"Number of history messages to return. Negative leaves it to the agent." default:"-1"`
}

func (c *GetCmd) Run(ctx context.Context, a *app) error {
	cl, err := a.client()
	if err != nil {
		return err
	}
	params := a2a.TaskQueryParams{ID: c.TaskID}
	if c.HistoryLength >= 0 {
		params.HistoryLength = &c.HistoryLength
	}
	task, err := cl.GetTask(ctx, params)
	if err != nil {
		return err
	}
	return a.out.Task(task)
}

// CancelCmd cancels a task.
type CancelCmd struct {
	TaskID string `arg:"" name:"task-id" help:"Task ID."`
}

func (c *CancelCmd) Run(ctx context.Context, a *app) error {
	cl, err := a.client()
	if err != nil {
		return err
	}
	task, err := cl.CancelTask(ctx, a2a.TaskIDParams{ID: c.TaskID})
	if err != nil {
		return err
	}
	return a.out.Task(task)
}

// SubscribeCmd sends a message and streams the task updates.
type SubscribeCmd struct {
	Text      string `arg:"" help:"Message text."`
	TaskID    string `name:"task-id" help:"Task ID. Generated when empty."`
	SessionID string `name:"session-id" help:"Session ID."`
	MaxEvents int    `name:"max-events" help:"Stop after this many events. Zero waits for the final event."`
}

func (c *SubscribeCmd) Run(ctx context.Context, a *app) error {
	cl, err := a.client()
	if err != nil {
		return err
	}
	stream, err := cl.SendTaskSubscribe(ctx, a2a.TaskSendParams{
		ID:        c.TaskID,
		SessionID: c.SessionID,
		Message:   a2a.NewUserTextMessage(c.Text),
	})
	if err != nil {
		return err
	}
	return a.consume(stream, c.MaxEvents)
}

// ResubscribeCmd streams the updates of an existing task.
type ResubscribeCmd struct {
	TaskID    string `arg:"" name:"task-id" help:"Task ID."`
	MaxEvents int    `name:"max-events" help:"Stop after this many events. Zero waits for the final event."`
}

func (c *ResubscribeCmd) Run(ctx context.Context, a *app) error {
	cl, err := a.client()
	if err != nil {
		return err
	}
	stream, err := cl.ResubscribeTask(ctx, a2a.TaskQueryParams{ID: c.TaskID})
	if err != nil {
		return err
	}
	return a.consume(stream, c.MaxEvents)
}

// consume prints events until the final one, the limit or the end of the stream.
func (a *app) consume(stream *client.Stream, limit int) error {
	n := 0
	for ev, err := range stream.All() {
		if err != nil {
			return err
		}
		if err := a.out.Event(ev); err != nil {
			return err
		}
		n++
		if ev.IsFinal() || (limit > 0 && n >= limit) {
			break
		}
	}
	if d := stream.Dropped(); d > 0 {
		a.logger.Warn("skipped malformed stream frames", "count", d)
	}
	return nil
}
