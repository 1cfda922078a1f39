// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAgent is wrapped by a [*RoutingError] for an identifier with no live client.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrNoDefaultAgent is wrapped by a [*RoutingError] when no default agent can be chosen.
	ErrNoDefaultAgent = errors.New("no default agent")
)

// ConfigError reports an endpoint list the [Registry] cannot be built from.
type ConfigError struct {
	Msg string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "registry configuration: " + e.Msg
}

// RoutingError reports a lookup that cannot be routed to a live client.
//
// The endpoint may be unconfigured or may have failed its startup probe.
type RoutingError struct {
	ID  string
	Err error
}

// Error implements the error interface.
func (e *RoutingError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("route agent: %v", e.Err)
	}
	return fmt.Sprintf("route agent %q: %v", e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e *RoutingError) Unwrap() error {
	return e.Err
}

// IsRoutingError reports whether err is, or wraps, a [*RoutingError].
func IsRoutingError(err error) bool {
	var rerr *RoutingError
	return errors.As(err, &rerr)
}
