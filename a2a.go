// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package a2a provides the data model of the Agent-to-Agent (A2A) task protocol.
//
// The types in this package mirror the JSON shapes exchanged with remote agents.
// The protocol client lives in the client package and the multi-agent registry
// in the registry package.
package a2a

import (
	"fmt"
	"time"
)

// Version is the version of this module.
const Version = "0.1.0"

// TaskState represents the state of a [Task].
//
// The set of states is closed in the protocol, but agents may send values this
// package does not know about. Such values are kept verbatim rather than rejected.
type TaskState string

const (
	// TaskStateSubmitted indicates the task has been submitted.
	TaskStateSubmitted TaskState = "submitted"

	// TaskStateWorking indicates the task is being worked on.
	TaskStateWorking TaskState = "working"

	// TaskStateInputRequired indicates the agent needs more input to continue.
	TaskStateInputRequired TaskState = "input-required"

	// TaskStateCompleted indicates the task has been completed.
	TaskStateCompleted TaskState = "completed"

	// TaskStateCanceled indicates the task has been canceled.
	TaskStateCanceled TaskState = "canceled"

	// TaskStateFailed indicates the task has failed.
	TaskStateFailed TaskState = "failed"

	// TaskStateUnknown indicates the agent does not know the task state.
	TaskStateUnknown TaskState = "unknown"
)

// IsKnown reports whether s is one of the states defined by the protocol.
func (s TaskState) IsKnown() bool {
	switch s {
	case TaskStateSubmitted, TaskStateWorking, TaskStateInputRequired,
		TaskStateCompleted, TaskStateCanceled, TaskStateFailed, TaskStateUnknown:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether s is a final state from which a task never moves.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateCanceled, TaskStateFailed:
		return true
	default:
		return false
	}
}

// TaskStatus represents the status of a task at a point in time.
type TaskStatus struct {
	State   TaskState `json:"state"`
	Message *Message  `json:"message,omitempty"`
	// Timestamp is kept as sent by the agent. Use [TaskStatus.Time] to parse it.
	Timestamp string `json:"timestamp,omitempty"`
}

// timestampLayouts are the layouts accepted by [TaskStatus.Time].
// Agents written in other languages commonly omit the zone offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Time parses the status timestamp.
// It returns the zero time and no error when no timestamp was sent.
func (s TaskStatus) Time() (time.Time, error) {
	if s.Timestamp == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s.Timestamp); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse task status timestamp %q", s.Timestamp)
}

// Artifact represents an output generated during a task.
type Artifact struct {
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Parts       []Part         `json:"parts"`
	Index       int            `json:"index,omitzero"`
	Append      *bool          `json:"append,omitempty"`
	LastChunk   *bool          `json:"lastChunk,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Task represents a unit of work submitted to a remote agent.
//
// The ID is chosen by the caller, or generated once at submission, and is the
// correlation key for every later get, cancel and subscribe call.
type Task struct {
	ID        string         `json:"id"`
	SessionID string         `json:"sessionId,omitempty"`
	Status    TaskStatus     `json:"status"`
	Artifacts []Artifact     `json:"artifacts,omitempty"`
	History   []Message      `json:"history,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// TaskStatusUpdateEvent is sent on a stream when a task's status changes.
type TaskStatusUpdateEvent struct {
	ID       string         `json:"id"`
	Status   TaskStatus     `json:"status"`
	Final    bool           `json:"final,omitzero"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TaskArtifactUpdateEvent is sent on a stream when a task produces an artifact.
type TaskArtifactUpdateEvent struct {
	ID       string         `json:"id"`
	Artifact Artifact       `json:"artifact"`
	Final    bool           `json:"final,omitzero"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TaskSendParams are the parameters of the tasks/send and tasks/sendSubscribe methods.
type TaskSendParams struct {
	ID                  string         `json:"id"`
	SessionID           string         `json:"sessionId,omitempty"`
	Message             Message        `json:"message"`
	AcceptedOutputModes []string       `json:"acceptedOutputModes,omitempty"`
	HistoryLength       *int           `json:"historyLength,omitempty"`
	Metadata            map[string]any `json:"metadata,omitempty"`
}

// TaskQueryParams are the parameters of the tasks/get and tasks/resubscribe methods.
type TaskQueryParams struct {
	ID            string         `json:"id"`
	HistoryLength *int           `json:"historyLength,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// TaskIDParams are the parameters of the tasks/cancel method.
type TaskIDParams struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
