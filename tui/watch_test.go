// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func applyWatch(t *testing.T, watch Watch, msg tea.Msg) (Watch, tea.Cmd) {
	t.Helper()
	model, cmd := watch.Update(msg)
	evolved, ok := model.(Watch)
	if !ok {
		t.Fatalf("Update returned %T, want Watch", model)
	}
	return evolved, cmd
}

func TestWatchAppendsEntries(t *testing.T) {
	watch := NewWatch(WatchConfig{
		Events:    make(chan WatchEntry),
		ForcedOut: make(chan string),
		Closed:    make(chan struct{}),
	})

	watch, cmd := applyWatch(t, watch, watchEntryMsg{At: time.Now(), Message: "Payment completed"})
	if len(watch.entries) != 1 || watch.entries[0].Message != "Payment completed" {
		t.Errorf("entries = %+v", watch.entries)
	}
	if cmd == nil {
		t.Error("entry handling did not re-arm the event wait")
	}
	if !strings.Contains(watch.View(), "Payment completed") {
		t.Error("view does not show the entry")
	}
}

func TestWatchBoundsTheLog(t *testing.T) {
	watch := NewWatch(WatchConfig{
		Events:    make(chan WatchEntry),
		ForcedOut: make(chan string),
		Closed:    make(chan struct{}),
	})
	for i := 0; i < maxWatchEntries+10; i++ {
		watch, _ = applyWatch(t, watch, watchEntryMsg{At: time.Now(), Message: "event"})
	}
	if len(watch.entries) != maxWatchEntries {
		t.Errorf("log length = %d, want %d", len(watch.entries), maxWatchEntries)
	}
}

func TestWatchForcedLogout(t *testing.T) {
	watch := NewWatch(WatchConfig{
		Events:    make(chan WatchEntry),
		ForcedOut: make(chan string),
		Closed:    make(chan struct{}),
	})
	watch, cmd := applyWatch(t, watch, watchForcedOutMsg("account disabled"))
	if watch.Outcome() != WatchForcedOut {
		t.Errorf("outcome = %d, want forced out", watch.Outcome())
	}
	if watch.ForceLogoutReason() != "account disabled" {
		t.Errorf("reason = %q", watch.ForceLogoutReason())
	}
	if cmd == nil {
		t.Error("forced logout did not schedule program exit")
	}
}

func TestWatchChannelClosed(t *testing.T) {
	watch := NewWatch(WatchConfig{
		Events:    make(chan WatchEntry),
		ForcedOut: make(chan string),
		Closed:    make(chan struct{}),
	})
	watch, _ = applyWatch(t, watch, watchClosedMsg{})
	if watch.Outcome() != WatchDisconnected {
		t.Errorf("outcome = %d, want disconnected", watch.Outcome())
	}
}

func TestWatchQuit(t *testing.T) {
	watch := NewWatch(WatchConfig{
		Events:    make(chan WatchEntry),
		ForcedOut: make(chan string),
		Closed:    make(chan struct{}),
	})
	watch, cmd := applyWatch(t, watch, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if watch.Outcome() != WatchStopped {
		t.Errorf("outcome = %d, want stopped", watch.Outcome())
	}
	if cmd == nil {
		t.Error("quit did not schedule program exit")
	}
}

func TestWatchShowsOnlineUsers(t *testing.T) {
	watch := NewWatch(WatchConfig{
		Events:      make(chan WatchEntry),
		ForcedOut:   make(chan string),
		Closed:      make(chan struct{}),
		OnlineUsers: func() []string { return []string{"user-1", "user-2"} },
	})
	view := watch.View()
	if !strings.Contains(view, "user-1, user-2") {
		t.Errorf("view does not show the online set:\n%s", view)
	}
}
