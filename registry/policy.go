// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package registry

// DefaultPolicy picks the agent used when a caller names none.
type DefaultPolicy interface {
	// Default returns the identifier of the default agent among the live
	// identifiers, given in configured order.
	Default(live []string) (string, error)
}

// DefaultPolicyFunc adapts a function to a [DefaultPolicy].
type DefaultPolicyFunc func(live []string) (string, error)

// Default implements [DefaultPolicy].
func (f DefaultPolicyFunc) Default(live []string) (string, error) {
	return f(live)
}

// FirstConfigured selects the first live agent in configured order.
var FirstConfigured DefaultPolicy = DefaultPolicyFunc(func(live []string) (string, error) {
	if len(live) == 0 {
		return "", ErrNoDefaultAgent
	}
	return live[0], nil
})

// NoDefault requires callers to always name an agent.
var NoDefault DefaultPolicy = DefaultPolicyFunc(func([]string) (string, error) {
	return "", ErrNoDefaultAgent
})
