// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger for command operations.
// When stderr is a terminal, uses slog.TextHandler for human-readable
// output. When stderr is piped or redirected (scripts, CI), uses
// slog.JSONHandler for machine-parseable output.
//
// The default level is Warn so that routine commands stay quiet;
// VISAMARK_DEBUG=1 lowers it to Debug, which also surfaces the HTTP
// request logging inside the API client.
func NewCommandLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("VISAMARK_DEBUG") != "" {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
