// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package logger_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-a2a/a2aconnect/internal/logger"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := logger.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		format string
		want   string
	}{
		"text":    {format: "text", want: `msg=hello agent=a`},
		"default": {format: "", want: `msg=hello agent=a`},
		"json":    {format: "JSON", want: `"msg":"hello","agent":"a"`},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l, err := logger.New("warn", tt.format, &buf)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			l.Info("dropped", "agent", "a")
			l.Warn("hello", "agent", "a")

			out := buf.String()
			if strings.Contains(out, "dropped") {
				t.Errorf("info record written at warn level:\n%s", out)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q does not contain %q", out, tt.want)
			}
		})
	}
}

func TestNewUnknownFormat(t *testing.T) {
	t.Parallel()

	if _, err := logger.New("info", "xml", &bytes.Buffer{}); err == nil {
		t.Error("New() with format xml succeeded")
	}
}
