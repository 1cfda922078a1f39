// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// EventKind discriminates the payload of a [StreamEvent].
type EventKind int

const (
	// EventKindUnknown is an object carrying neither a status nor an artifact.
	EventKindUnknown EventKind = iota
	// EventKindStatus is a [TaskStatusUpdateEvent].
	EventKindStatus
	// EventKindArtifact is a [TaskArtifactUpdateEvent].
	EventKindArtifact
)

// String implements [fmt.Stringer].
func (k EventKind) String() string {
	switch k {
	case EventKindStatus:
		return "status"
	case EventKindArtifact:
		return "artifact"
	default:
		return "unknown"
	}
}

// StreamEvent is one element of a task update stream.
//
// The wire carries no type tag, so the kind is detected once by
// [DecodeStreamEvent] from the presence of a "status" or "artifact" member.
// Exactly one of Status and Artifact is set for the matching kind, and
// neither for [EventKindUnknown]. Raw always holds the original result value.
type StreamEvent struct {
	Kind     EventKind
	Status   *TaskStatusUpdateEvent
	Artifact *TaskArtifactUpdateEvent
	Raw      jsontext.Value
}

// DecodeStreamEvent decodes the result value of a streamed envelope.
//
// It fails if raw is not a JSON object, or if it does not decode into the
// shape its kind implies.
func DecodeStreamEvent(raw jsontext.Value) (*StreamEvent, error) {
	var members map[string]jsontext.Value
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, fmt.Errorf("stream event is not an object: %w", err)
	}
	if members == nil {
		return nil, fmt.Errorf("stream event is null")
	}

	ev := &StreamEvent{
		Raw: raw.Clone(),
	}
	switch {
	case hasMember(members, "status"):
		ev.Kind = EventKindStatus
		ev.Status = new(TaskStatusUpdateEvent)
		if err := json.Unmarshal(raw, ev.Status); err != nil {
			return nil, fmt.Errorf("decode status update event: %w", err)
		}
	case hasMember(members, "artifact"):
		ev.Kind = EventKindArtifact
		ev.Artifact = new(TaskArtifactUpdateEvent)
		if err := json.Unmarshal(raw, ev.Artifact); err != nil {
			return nil, fmt.Errorf("decode artifact update event: %w", err)
		}
	default:
		ev.Kind = EventKindUnknown
	}

	return ev, nil
}

func hasMember(members map[string]jsontext.Value, name string) bool {
	v, ok := members[name]
	return ok && v.Kind() != 'n'
}

// TaskID returns the task ID carried by the event.
// For [EventKindUnknown] it reads a top-level "id" string if one is present.
func (e *StreamEvent) TaskID() string {
	switch e.Kind {
	case EventKindStatus:
		return e.Status.ID
	case EventKindArtifact:
		return e.Artifact.ID
	}
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(e.Raw, &probe); err != nil {
		return ""
	}
	return probe.ID
}

// IsFinal reports whether the agent flagged the event as the last one of the stream.
// For [EventKindUnknown] it reads a top-level "final" boolean if one is present.
func (e *StreamEvent) IsFinal() bool {
	switch e.Kind {
	case EventKindStatus:
		return e.Status.Final
	case EventKindArtifact:
		return e.Artifact.Final
	}
	var probe struct {
		Final bool `json:"final"`
	}
	if err := json.Unmarshal(e.Raw, &probe); err != nil {
		return false
	}
	return probe.Final
}
