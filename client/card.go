// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-json-experiment/json"

	"github.com/go-a2a/a2aconnect"
	"github.com/go-a2a/a2aconnect/internal/pool"
)

// opAgentCard names card retrieval in telemetry, alongside the RPC method names.
const opAgentCard = "agent/card"

// AgentCard fetches the agent's card.
//
// The well-known path is tried first. On any failure, whether unreachable,
// non-2xx, undecodable or a card without a name, the fallback path is tried. If both fail the
// returned error names both paths and wraps the fallback failure. The card is
// fetched again on every call.
func (c *Client) AgentCard(ctx context.Context) (_ *a2a.AgentCard, err error) {
	ctx, span := c.startSpan(ctx, "AgentCard", opAgentCard, "")
	defer func() { c.endSpan(ctx, span, opAgentCard, err) }()

	card, wkErr := c.fetchCard(ctx, a2a.AgentCardWellKnownPath)
	if wkErr == nil {
		return card, nil
	}
	c.logger.DebugContext(ctx, "well-known agent card unavailable, trying fallback",
		slog.String("url", c.baseURL),
		slog.Any("error", wkErr),
	)

	card, err = c.fetchCard(ctx, a2a.AgentCardFallbackPath)
	if err != nil {
		return nil, fmt.Errorf("fetch agent card (tried %s and %s): %w",
			a2a.AgentCardWellKnownPath, a2a.AgentCardFallbackPath, err)
	}
	return card, nil
}

// Supports reports whether the agent's card declares capability as true.
//
// The answer is advisory: if the card cannot be fetched Supports returns false.
func (c *Client) Supports(ctx context.Context, capability string) bool {
	card, err := c.AgentCard(ctx)
	if err != nil {
		c.logger.DebugContext(ctx, "agent card unavailable, assuming capability is unsupported",
			slog.String("url", c.baseURL),
			slog.String("capability", capability),
			slog.Any("error", err),
		)
		return false
	}
	return card.Capabilities.Supports(capability)
}

func (c *Client) fetchCard(ctx context.Context, path string) (*a2a.AgentCard, error) {
	target := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, &ConfigurationError{Msg: "create request", Err: err}
	}
	c.setHeaders(req, a2a.ContentTypeJSON)

	resp, err := c.invoke(ctx, req)
	if err != nil {
		return nil, &NetworkError{Msg: "GET " + target, Err: err}
	}
	defer resp.Body.Close()

	buf := pool.Bytes.Get()
	defer pool.Bytes.Put(buf)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, &NetworkError{Msg: "read " + target, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: bytes.Clone(buf.Bytes())}
	}

	var card a2a.AgentCard
	if err := json.Unmarshal(buf.Bytes(), &card); err != nil {
		return nil, &ProtocolError{Msg: "decode agent card from " + target, Err: err}
	}
	if card.Name == "" {
		return nil, &ProtocolError{Msg: "agent card from " + target + " has no name"}
	}
	return &card, nil
}
