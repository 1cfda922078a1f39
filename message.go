// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"strings"
)

// Role represents the role of a message sender.
type Role string

// Role constants for message senders.
const (
	RoleAgent Role = "agent"
	RoleUser  Role = "user"
)

// PartTypeText is the discriminator tag of a text part.
const PartTypeText = "text"

// Part is one piece of a message's content.
//
// Only text content is modeled. Type is an optional discriminator tag that is
// passed through as sent.
type Part struct {
	Type     string         `json:"type,omitempty"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewTextPart returns a text [Part].
func NewTextPart(text string) Part {
	return Part{
		Type: PartTypeText,
		Text: text,
	}
}

// Message is a single turn exchanged between a user and an agent.
type Message struct {
	Role     Role           `json:"role"`
	Parts    []Part         `json:"parts"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewUserTextMessage returns a user message with a single text part.
func NewUserTextMessage(text string) Message {
	return Message{
		Role:  RoleUser,
		Parts: []Part{NewTextPart(text)},
	}
}

// Text joins the text of all parts with newlines.
func (m Message) Text() string {
	texts := make([]string, 0, len(m.Parts))
	for _, p := range m.Parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}
