// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Command a2actl talks to the A2A agents listed in its configuration.
//
// Usage:
//
//	a2actl --config agents.yaml agents
//	a2actl --agent weather send "What is the forecast?"
//	a2actl subscribe --max-events 10 "Summarize the news"
//	a2actl get 3f6c2a5e-... --history-length 2
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/go-a2a/a2aconnect"
	"github.com/go-a2a/a2aconnect/client"
	"github.com/go-a2a/a2aconnect/internal/config"
	"github.com/go-a2a/a2aconnect/internal/logger"
	"github.com/go-a2a/a2aconnect/registry"
)

// Exit codes.
const (
	exitOK           = 0
	exitAgentError   = 1
	exitUnreachable  = 2
	exitUnknownAgent = 3
)

// CLI defines the command-line interface.
type CLI struct {
	Config    string `short:"c" help:"Path to a YAML or TOML config file." type:"path" env:"A2A_CONFIG"`
	EnvFile   string `name:"env-file" help:"Path to a .env file." default:".env" type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error). Overrides the config file."`
	LogFormat string `help:"Log format (text, json). Overrides the config file."`
	Agent     string `short:"a" help:"Agent identifier. Empty selects the first reachable agent."`

	Version kong.VersionFlag `help:"Print the version and exit."`

	Agents      AgentsCmd      `cmd:"" help:"List configured agents and whether they are reachable."`
	Card        CardCmd        `cmd:"" help:"Fetch the agent card."`
	Supports    SupportsCmd    `cmd:"" help:"Report whether the agent declares a capability."`
	Send        SendCmd        `cmd:"" help:"Send a message as a new task."`
	Get         GetCmd         `cmd:"" help:"Get a task."`
	Cancel      CancelCmd      `cmd:"" help:"Cancel a task."`
	Subscribe   SubscribeCmd   `cmd:"" help:"Send a message and stream task updates."`
	Resubscribe ResubscribeCmd `cmd:"" help:"Stream updates of an existing task."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Exit)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, exit func(int)) int {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("a2actl"),
		kong.Description("Command-line client for A2A agents."),
		kong.UsageOnError(),
		kong.Vars{"version": a2a.Version},
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitAgentError
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%v", err)
		return exitAgentError
	}

	app, err := newApp(ctx, &cli, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitAgentError
	}
	if err := kctx.Run(app); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps an error to the process exit code.
// An unreachable agent is reported as such even when it surfaces through the registry.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case client.IsNetworkError(err):
		return exitUnreachable
	case errors.Is(err, registry.ErrUnknownAgent), errors.Is(err, registry.ErrNoDefaultAgent):
		return exitUnknownAgent
	default:
		return exitAgentError
	}
}

// app is the state shared by all commands.
type app struct {
	agent    string
	registry *registry.Registry
	logger   *slog.Logger
	out      *printer
}

func newApp(ctx context.Context, cli *CLI, stdout, stderr io.Writer) (*app, error) {
	if err := config.LoadDotEnv(cli.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		cfg.Log.Format = cli.LogFormat
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, stderr)
	if err != nil {
		return nil, err
	}

	reg, err := registry.New(ctx, cfg.Endpoints(nil),
		registry.WithLogger(log),
		registry.WithProbeTimeout(cfg.ProbeTimeout.Duration()),
		registry.WithProbeConcurrency(cfg.ProbeConcurrency),
		registry.WithClientOptions(
			client.WithLogger(log),
			client.WithInterceptors(client.LoggingInterceptor(log)),
		),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		agent:    cli.Agent,
		registry: reg,
		logger:   log,
		out:      newPrinter(stdout, stderr),
	}, nil
}

// client resolves the agent selected by --agent.
func (a *app) client() (*client.Client, error) {
	id, c, err := a.registry.Resolve(a.agent)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("resolved agent", slog.String("agent", id), slog.String("url", c.BaseURL()))
	return c, nil
}
