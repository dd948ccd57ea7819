// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WatchOutcome is how the watch view ended.
type WatchOutcome int

const (
	// WatchStopped means the user quit the view.
	WatchStopped WatchOutcome = iota
	// WatchForcedOut means the server ended the session; the stored
	// session must be removed.
	WatchForcedOut
	// WatchDisconnected means the event channel shut down.
	WatchDisconnected
)

// WatchEntry is one timestamped event line in the watch log.
type WatchEntry struct {
	At      time.Time
	Message string
}

// maxWatchEntries bounds the in-memory event log.
const maxWatchEntries = 200

// WatchConfig configures the live event view.
type WatchConfig struct {
	// Events delivers notification lines as they arrive.
	Events <-chan WatchEntry

	// ForcedOut delivers the server's force-logout reason. Receiving
	// ends the view with WatchForcedOut.
	ForcedOut <-chan string

	// Closed signals that the event channel shut down for good.
	Closed <-chan struct{}

	// OnlineUsers returns the current presence set for display.
	OnlineUsers func() []string
}

// Watch is the live event view: a scrolling log of platform events
// with the online-user set in the header. It owns no connection state;
// the caller wires a realtime channel and dispatcher into the three
// input channels.
type Watch struct {
	config WatchConfig
	theme  Theme
	keys   KeyMap

	entries []WatchEntry
	outcome WatchOutcome
	reason  string
	width   int
	height  int
}

// NewWatch creates the live event view.
func NewWatch(config WatchConfig) Watch {
	return Watch{
		config: config,
		theme:  DefaultTheme,
		keys:   DefaultKeyMap,
		width:  80,
		height: 24,
	}
}

// Outcome reports how the view ended. Valid after the program returns.
func (w Watch) Outcome() WatchOutcome { return w.outcome }

// ForceLogoutReason is the server's reason when Outcome is
// WatchForcedOut.
func (w Watch) ForceLogoutReason() string { return w.reason }

type watchEntryMsg WatchEntry

type watchForcedOutMsg string

type watchClosedMsg struct{}

type watchTickMsg time.Time

func (w Watch) Init() tea.Cmd {
	return tea.Batch(
		w.awaitEntry(),
		w.awaitForcedOut(),
		w.awaitClosed(),
		watchTick(),
	)
}

func (w Watch) awaitEntry() tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-w.config.Events
		if !ok {
			return watchClosedMsg{}
		}
		return watchEntryMsg(entry)
	}
}

func (w Watch) awaitForcedOut() tea.Cmd {
	return func() tea.Msg {
		return watchForcedOutMsg(<-w.config.ForcedOut)
	}
}

func (w Watch) awaitClosed() tea.Cmd {
	return func() tea.Msg {
		<-w.config.Closed
		return watchClosedMsg{}
	}
}

// watchTick refreshes the presence header once a second even when no
// event arrives.
func watchTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (w Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		return w, nil

	case tea.KeyMsg:
		if key.Matches(msg, w.keys.Quit) {
			w.outcome = WatchStopped
			return w, tea.Quit
		}
		return w, nil

	case watchEntryMsg:
		w.entries = append(w.entries, WatchEntry(msg))
		if len(w.entries) > maxWatchEntries {
			w.entries = w.entries[len(w.entries)-maxWatchEntries:]
		}
		return w, w.awaitEntry()

	case watchForcedOutMsg:
		w.outcome = WatchForcedOut
		w.reason = string(msg)
		return w, tea.Quit

	case watchClosedMsg:
		w.outcome = WatchDisconnected
		return w, tea.Quit

	case watchTickMsg:
		return w, watchTick()
	}
	return w, nil
}

func (w Watch) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(w.theme.HeaderForeground).
		Render("Live events")
	help := lipgloss.NewStyle().
		Foreground(w.theme.HelpText).
		Render("q quit")

	var builder strings.Builder
	builder.WriteString(header + "  " + help + "\n")

	if w.config.OnlineUsers != nil {
		if online := w.config.OnlineUsers(); len(online) > 0 {
			builder.WriteString(lipgloss.NewStyle().
				Foreground(w.theme.FaintText).
				Render(fmt.Sprintf("online: %s", strings.Join(online, ", "))))
			builder.WriteString("\n")
		}
	}
	builder.WriteString("\n")

	// Show the newest entries that fit below the header.
	visible := w.entries
	if rows := w.height - 4; rows > 0 && len(visible) > rows {
		visible = visible[len(visible)-rows:]
	}
	if len(visible) == 0 {
		builder.WriteString(lipgloss.NewStyle().
			Foreground(w.theme.FaintText).
			Render("waiting for events..."))
		builder.WriteString("\n")
	}
	timestampStyle := lipgloss.NewStyle().Foreground(w.theme.FaintText)
	messageStyle := lipgloss.NewStyle().Foreground(w.theme.NormalText)
	for _, entry := range visible {
		builder.WriteString(timestampStyle.Render(entry.At.Format("15:04:05")))
		builder.WriteString(" ")
		builder.WriteString(messageStyle.Render(entry.Message))
		builder.WriteString("\n")
	}
	return builder.String()
}
