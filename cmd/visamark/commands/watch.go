// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/visamark/visamark/cmd/visamark/cli"
	"github.com/visamark/visamark/lib/config"
	"github.com/visamark/visamark/realtime"
	"github.com/visamark/visamark/tui"
)

type watchParams struct {
	URL   string `flag:"url" desc:"event channel URL (default: from config)"`
	Plain bool   `flag:"plain" desc:"print events as plain lines instead of the live view"`
}

// WatchCommand returns the "watch" command: a long-running subscriber
// that shows platform events (application status changes, document
// reviews, payment updates, broadcasts) as they happen. Interactive
// terminals get a live view with the online-user set; pipes get plain
// timestamped lines. Runs until interrupted. A force-logout event from
// the server ends the watch and removes the local session.
func WatchCommand(logger *slog.Logger) *cli.Command {
	var params watchParams

	return &cli.Command{
		Name:    "watch",
		Summary: "Stream platform events to the terminal",
		Usage:   "visamark watch [flags]",
		Examples: []cli.Example{
			{
				Description: "Watch for status changes",
				Command:     "visamark watch",
			},
			{
				Description: "Log events to a file",
				Command:     "visamark watch --plain >> events.log",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("watch", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			channelURL := params.URL
			if channelURL == "" {
				cfg, err := config.Load("")
				if err != nil {
					return cli.Internal("load config: %w", err)
				}
				channelURL = cfg.Channel.URL
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			entries := make(chan tui.WatchEntry, 64)
			forcedOut := make(chan string, 1)
			dispatcher := realtime.NewDispatcher(realtime.DispatcherConfig{
				Notifier: entryNotifier{entries: entries},
				OnForceLogout: func(reason string) {
					select {
					case forcedOut <- reason:
					default:
					}
				},
				Logger: logger,
			})

			channel, err := realtime.Open(ctx, realtime.ChannelConfig{
				URL:         channelURL,
				AccessToken: session.Credentials().AccessToken,
				Handler:     dispatcher.Handle,
				Logger:      logger,
			})
			if err != nil {
				return cli.Transient("connecting to event channel: %v", err)
			}
			defer channel.Close()

			if !params.Plain && term.IsTerminal(int(os.Stdout.Fd())) {
				return watchLive(dispatcher, channel, entries, forcedOut, logger)
			}
			return watchPlain(ctx, channel, entries, forcedOut, logger)
		},
	}
}

// watchLive runs the full-screen event view.
func watchLive(dispatcher *realtime.Dispatcher, channel *realtime.Channel, entries <-chan tui.WatchEntry, forcedOut <-chan string, logger *slog.Logger) error {
	view := tui.NewWatch(tui.WatchConfig{
		Events:      entries,
		ForcedOut:   forcedOut,
		Closed:      channel.Done(),
		OnlineUsers: dispatcher.OnlineUsers,
	})

	program := tea.NewProgram(view, tea.WithAltScreen())
	finalModel, err := program.Run()
	if err != nil {
		return cli.Internal("running event view: %w", err)
	}

	final, ok := finalModel.(tui.Watch)
	if !ok {
		return cli.Internal("unexpected model type %T", finalModel)
	}
	switch final.Outcome() {
	case tui.WatchForcedOut:
		return forcedOutError(final.ForceLogoutReason(), logger)
	case tui.WatchDisconnected:
		return cli.Transient("event channel closed")
	}
	fmt.Fprintln(os.Stderr, "Stopped.")
	return nil
}

// watchPlain prints events as timestamped lines until interrupted.
func watchPlain(ctx context.Context, channel *realtime.Channel, entries <-chan tui.WatchEntry, forcedOut <-chan string, logger *slog.Logger) error {
	fmt.Fprintln(os.Stderr, "Watching for events. Press Ctrl-C to stop.")
	for {
		select {
		case entry := <-entries:
			fmt.Printf("[%s] %s\n", entry.At.Format("15:04:05"), entry.Message)
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "Stopped.")
			return nil
		case reason := <-forcedOut:
			return forcedOutError(reason, logger)
		case <-channel.Done():
			return cli.Transient("event channel closed")
		}
	}
}

func forcedOutError(reason string, logger *slog.Logger) error {
	if err := cli.DeleteStoredSession(); err != nil {
		logger.Warn("removing session file failed", "error", err)
	}
	if reason == "" {
		reason = "signed out by the server"
	}
	return cli.Auth("session ended: %s — run \"visamark login\" to sign in again", reason)
}

// entryNotifier adapts dispatcher notifications into watch entries.
type entryNotifier struct {
	entries chan<- tui.WatchEntry
}

func (n entryNotifier) Notify(message string) {
	select {
	case n.entries <- tui.WatchEntry{At: time.Now(), Message: message}:
	default:
		// A stalled consumer drops events rather than blocking the
		// channel's read loop.
	}
}
