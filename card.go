// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

// Capability names understood by [AgentCapabilities.Supports].
const (
	CapabilityStreaming              = "streaming"
	CapabilityPushNotifications      = "pushNotifications"
	CapabilityStateTransitionHistory = "stateTransitionHistory"
)

// AgentProvider represents the service provider of an agent.
type AgentProvider struct {
	Organization string `json:"organization"`
	URL          string `json:"url,omitempty"`
}

// AgentCapabilities lists the optional protocol features an agent supports.
// An absent capability is false.
type AgentCapabilities struct {
	Streaming              bool `json:"streaming,omitzero"`
	PushNotifications      bool `json:"pushNotifications,omitzero"`
	StateTransitionHistory bool `json:"stateTransitionHistory,omitzero"`

	// Extra holds capabilities this package does not know about.
	Extra map[string]any `json:",unknown"`
}

// Supports reports whether the named capability is declared as true.
func (c AgentCapabilities) Supports(name string) bool {
	switch name {
	case CapabilityStreaming:
		return c.Streaming
	case CapabilityPushNotifications:
		return c.PushNotifications
	case CapabilityStateTransitionHistory:
		return c.StateTransitionHistory
	}
	v, ok := c.Extra[name].(bool)
	return ok && v
}

// AgentAuthentication declares the authentication schemes an agent accepts.
// The client reads it but does not act on it.
type AgentAuthentication struct {
	Schemes     []string `json:"schemes"`
	Credentials string   `json:"credentials,omitempty"`
}

// AgentSkill describes a unit of capability an agent can perform.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	InputModes  []string `json:"inputModes,omitempty"`
	OutputModes []string `json:"outputModes,omitempty"`
}

// AgentCard is the capability descriptor an agent publishes about itself.
type AgentCard struct {
	Name               string               `json:"name"`
	Description        string               `json:"description,omitempty"`
	URL                string               `json:"url"`
	Provider           *AgentProvider       `json:"provider,omitempty"`
	Version            string               `json:"version"`
	DocumentationURL   string               `json:"documentationUrl,omitempty"`
	Capabilities       AgentCapabilities    `json:"capabilities"`
	Authentication     *AgentAuthentication `json:"authentication,omitempty"`
	DefaultInputModes  []string             `json:"defaultInputModes,omitempty"`
	DefaultOutputModes []string             `json:"defaultOutputModes,omitempty"`
	Skills             []AgentSkill         `json:"skills"`
}

// FindSkill finds a skill by ID.
func (c *AgentCard) FindSkill(skillID string) (*AgentSkill, bool) {
	for i := range c.Skills {
		if c.Skills[i].ID == skillID {
			return &c.Skills[i], true
		}
	}
	return nil, false
}

// SupportedInputModes returns the input modes supported by a skill.
// If the skill is unknown or declares no input modes, the card defaults are returned.
func (c *AgentCard) SupportedInputModes(skillID string) []string {
	if skill, ok := c.FindSkill(skillID); ok && len(skill.InputModes) > 0 {
		return skill.InputModes
	}
	return c.DefaultInputModes
}

// SupportedOutputModes returns the output modes supported by a skill.
// If the skill is unknown or declares no output modes, the card defaults are returned.
func (c *AgentCard) SupportedOutputModes(skillID string) []string {
	if skill, ok := c.FindSkill(skillID); ok && len(skill.OutputModes) > 0 {
		return skill.OutputModes
	}
	return c.DefaultOutputModes
}
