// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package realtime

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Notifier surfaces a transient user-visible message (the terminal
// equivalent of a toast). Implementations must be safe for concurrent
// use: events arrive asynchronously relative to request/response flows.
type Notifier interface {
	Notify(message string)
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// Notifier receives transient messages for notification, broadcast,
	// and domain events. If nil, those events are logged only.
	Notifier Notifier

	// OnForceLogout is invoked when the server pushes auth:forceLogout.
	// It must clear stored credentials and route to the login entry,
	// bypassing the normal teardown path. If nil, the event is logged
	// only.
	OnForceLogout func(message string)

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Dispatcher routes the typed event union to its side effects: the
// online-user set, transient notifications, and forced logout. Events
// the platform leaves to specific views (comments, typing indicators)
// are forwarded on ViewEvents instead of being acted upon generically.
//
// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	notifier      Notifier
	onForceLogout func(string)
	logger        *slog.Logger

	mu     sync.Mutex
	online map[string]struct{}

	viewEvents chan Event
}

// viewEventBuffer bounds the view-event queue. When no view is
// draining it, further comment/typing events are dropped rather than
// blocking the channel's read loop.
const viewEventBuffer = 64

// NewDispatcher creates a Dispatcher.
func NewDispatcher(config DispatcherConfig) *Dispatcher {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		notifier:      config.Notifier,
		onForceLogout: config.OnForceLogout,
		logger:        logger,
		online:        make(map[string]struct{}),
		viewEvents:    make(chan Event, viewEventBuffer),
	}
}

// Handle applies one event's side effects.
func (d *Dispatcher) Handle(event Event) {
	switch e := event.(type) {
	case PresenceEvent:
		d.mu.Lock()
		if e.Online {
			d.online[e.UserID] = struct{}{}
		} else {
			delete(d.online, e.UserID)
		}
		d.mu.Unlock()

	case NotificationEvent:
		d.notify(e.Message)

	case BroadcastEvent:
		d.notify(e.Message)

	case ForceLogoutEvent:
		d.logger.Warn("server forced logout", "message", e.Message)
		if d.onForceLogout != nil {
			d.onForceLogout(e.Message)
		}

	case ApplicationStatusEvent:
		d.notify(fmt.Sprintf("Application status updated to: %s", e.NewStatus))

	case DocumentStatusEvent:
		d.notify(fmt.Sprintf("Document %s", e.NewStatus))

	case PaymentStatusEvent:
		d.notify(fmt.Sprintf("Payment %s", e.Status))

	case CommentEvent, TypingEvent:
		select {
		case d.viewEvents <- event:
		default:
			d.logger.Debug("view event dropped, no consumer", "event", event.Name())
		}

	default:
		d.logger.Debug("unhandled event", "event", event.Name())
	}
}

func (d *Dispatcher) notify(message string) {
	if message == "" {
		return
	}
	if d.notifier == nil {
		d.logger.Info("notification", "message", message)
		return
	}
	d.notifier.Notify(message)
}

// OnlineUsers returns the currently observed online-user set, sorted
// for stable display.
func (d *Dispatcher) OnlineUsers() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	users := make([]string, 0, len(d.online))
	for userID := range d.online {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// ViewEvents exposes comment and typing events for view-level
// consumption.
func (d *Dispatcher) ViewEvents() <-chan Event {
	return d.viewEvents
}
