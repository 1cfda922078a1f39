// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/go-a2a/a2aconnect"
)

// printer writes command results as indented JSON and task state lines.
type printer struct {
	out    io.Writer
	status io.Writer
}

func newPrinter(out, status io.Writer) *printer {
	return &printer{out: out, status: status}
}

var stateColors = map[a2a.TaskState]*color.Color{
	a2a.TaskStateSubmitted:     color.New(color.FgYellow),
	a2a.TaskStateWorking:       color.New(color.FgYellow),
	a2a.TaskStateInputRequired: color.New(color.FgCyan),
	a2a.TaskStateCompleted:     color.New(color.FgGreen),
	a2a.TaskStateCanceled:      color.New(color.FgRed),
	a2a.TaskStateFailed:        color.New(color.FgRed, color.Bold),
}

// JSON writes v to the output as indented JSON.
func (p *printer) JSON(v any) error {
	data, err := json.Marshal(v, jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(bytes.TrimRight(data, "\n"), '\n')
	_, err = p.out.Write(data)
	return err
}

// Task writes a task and its state.
func (p *printer) Task(task *a2a.Task) error {
	if task == nil {
		return p.JSON(nil)
	}
	if err := p.JSON(task); err != nil {
		return err
	}
	p.State(task.ID, task.Status.State, false)
	return nil
}

// Event writes a stream event as received and, for status updates, its state.
func (p *printer) Event(ev *a2a.StreamEvent) error {
	if err := p.JSON(ev.Raw); err != nil {
		return err
	}
	if ev.Kind == a2a.EventKindStatus {
		p.State(ev.Status.ID, ev.Status.Status.State, ev.Status.Final)
	}
	return nil
}

// State writes a task state line, colored when the terminal supports it.
func (p *printer) State(taskID string, state a2a.TaskState, final bool) {
	label := string(state)
	if c, ok := stateColors[state]; ok {
		label = c.Sprint(label)
	}
	suffix := ""
	if final {
		suffix = " (final)"
	}
	fmt.Fprintf(p.status, "task %s: %s%s\n", taskID, label, suffix)
}
