// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

// Agent card discovery paths, relative to an agent's base URL.
const (
	// AgentCardWellKnownPath is the standard path for retrieving an agent's AgentCard.
	// It is always tried first.
	//
	// Example usage: https://agent.example.com/.well-known/agent.json
	AgentCardWellKnownPath = "/.well-known/agent.json"

	// AgentCardFallbackPath is the conventional path tried when the well-known
	// path cannot be fetched.
	AgentCardFallbackPath = "/agent-card"
)

// Media types used by the two transports.
const (
	ContentTypeJSON        = "application/json"
	ContentTypeEventStream = "text/event-stream"
)
