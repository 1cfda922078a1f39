// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Command fake-agent serves a scriptable echo A2A agent for manual testing.
//
// Usage:
//
//	fake-agent --addr :9001
//	fake-agent --addr :9002 --no-well-known --stream-delay 500ms
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/go-a2a/a2aconnect"
	"github.com/go-a2a/a2aconnect/internal/agenttest"
	"github.com/go-a2a/a2aconnect/internal/logger"
)

// CLI defines the command-line interface.
type CLI struct {
	Addr        string        `help:"Address to listen on." default:"localhost:9001"`
	Name        string        `help:"Agent name published in the card." default:"Echo Agent"`
	NoWellKnown bool          `name:"no-well-known" help:"Serve the card only on the fallback path."`
	SendState   string        `name:"send-state" help:"State of tasks created by tasks/send." default:"completed" enum:"submitted,working,input-required,completed,canceled,failed"`
	StreamDelay time.Duration `name:"stream-delay" help:"Pause between streamed frames."`
	LogLevel    string        `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFormat   string        `help:"Log format (text, json)." default:"text"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("fake-agent"),
		kong.Description("Serve a fake A2A echo agent."),
		kong.UsageOnError(),
	)

	if err := run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cli *CLI) error {
	log, err := logger.New(cli.LogLevel, cli.LogFormat, os.Stderr)
	if err != nil {
		return err
	}

	card := agenttest.DefaultCard()
	card.Name = cli.Name
	card.URL = "http://" + cli.Addr

	opts := []agenttest.Option{
		agenttest.WithCard(card),
		agenttest.WithSendState(a2a.TaskState(cli.SendState)),
		agenttest.WithStreamDelay(cli.StreamDelay),
		agenttest.WithLogger(log),
	}
	if cli.NoWellKnown {
		opts = append(opts, agenttest.WithoutWellKnown())
	}

	srv := &http.Server{
		Addr:              cli.Addr,
		Handler:           agenttest.New(opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("fake agent listening", slog.String("addr", cli.Addr), slog.Bool("well_known", !cli.NoWellKnown))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
