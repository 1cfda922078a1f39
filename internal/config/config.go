// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the agent endpoint list and runtime settings.
//
// Settings come from an optional YAML or TOML file, then from the
// environment, which may itself be seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/go-a2a/a2aconnect/registry"
)

// Environment variables read by [Load].
const (
	EnvAgentURLs    = "A2A_AGENT_URLS"
	EnvLogLevel     = "A2A_LOG_LEVEL"
	EnvLogFormat    = "A2A_LOG_FORMAT"
	EnvProbeTimeout = "A2A_PROBE_TIMEOUT"
)

// Defaults applied by [Load].
const (
	DefaultProbeTimeout     = 10 * time.Second
	DefaultProbeConcurrency = registry.DefaultProbeConcurrency
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

// Config is the runtime configuration.
type Config struct {
	Agents           []Agent  `yaml:"agents" toml:"agents"`
	ProbeTimeout     Duration `yaml:"probe_timeout" toml:"probe_timeout"`
	ProbeConcurrency int      `yaml:"probe_concurrency" toml:"probe_concurrency"`
	Log              Log      `yaml:"log" toml:"log"`
}

// Agent is one configured agent endpoint.
type Agent struct {
	// ID is optional; a fresh one is generated when empty.
	ID  string `yaml:"id" toml:"id"`
	URL string `yaml:"url" toml:"url"`
}

// Log configures logging.
type Log struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Duration is a [time.Duration] written as a string such as "1.5s".
type Duration time.Duration

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalYAML implements [yaml.Unmarshaler].
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("line %d: duration must be a string such as \"10s\"", node.Line)
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns d as a [time.Duration].
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// LoadDotEnv loads variables from the given .env files, or from ./.env when
// none are given. Missing files are skipped and variables already set in the
// environment are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads the configuration file at path, if path is not empty, and
// applies environment overrides and defaults.
//
// The file format is chosen by extension: .yaml, .yml or .toml. ${VAR} and
// ${VAR:-default} references in the file are expanded before decoding.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decode(path, ExpandEnv(string(data)), cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path, data string, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal([]byte(data), cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config %s: unsupported format %q (want .yaml, .yml or .toml)", path, ext)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvAgentURLs); ok && strings.TrimSpace(v) != "" {
		c.Agents = c.Agents[:0]
		for _, u := range ParseURLs(v) {
			c.Agents = append(c.Agents, Agent{URL: u})
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv(EnvProbeTimeout); v != "" {
		if err := c.ProbeTimeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", EnvProbeTimeout, err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = Duration(DefaultProbeTimeout)
	}
	if c.ProbeConcurrency == 0 {
		c.ProbeConcurrency = DefaultProbeConcurrency
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.ProbeTimeout < 0 {
		return fmt.Errorf("probe_timeout must not be negative, got %s", c.ProbeTimeout.Duration())
	}
	if c.ProbeConcurrency < 0 {
		return fmt.Errorf("probe_concurrency must not be negative, got %d", c.ProbeConcurrency)
	}
	for i, a := range c.Agents {
		if strings.TrimSpace(a.URL) == "" {
			return fmt.Errorf("agents[%d]: url is required", i)
		}
	}
	return nil
}

// Endpoints returns the registry endpoints of the configured agents in order.
// Agents without an ID get one from idgen, or a random UUID if idgen is nil.
func (c *Config) Endpoints(idgen func() string) []registry.Endpoint {
	if idgen == nil {
		idgen = uuid.NewString
	}
	endpoints := make([]registry.Endpoint, 0, len(c.Agents))
	for _, a := range c.Agents {
		id := a.ID
		if id == "" {
			id = idgen()
		}
		endpoints = append(endpoints, registry.Endpoint{ID: id, URL: strings.TrimSpace(a.URL)})
	}
	return endpoints
}

// ParseURLs splits a comma or whitespace separated list of URLs.
func ParseURLs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}
