// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package realtime

import (
	"encoding/json"
	"fmt"
)

// Event is one server-pushed event from the realtime channel. The
// concrete types below form the full set of events the platform emits;
// modeling them as a closed union keeps every possible pushed event
// enumerable and individually testable.
type Event interface {
	// Name returns the wire name of the event (e.g., "user:online").
	Name() string
}

// Wire names for every event the platform emits.
const (
	EventUserOnline         = "user:online"
	EventUserOffline        = "user:offline"
	EventNotification       = "notification:new"
	EventBroadcast          = "system:broadcast"
	EventForceLogout        = "auth:forceLogout"
	EventApplicationStatus  = "application:statusUpdated"
	EventDocumentStatus     = "document:statusChanged"
	EventPaymentStatus      = "payment:statusUpdate"
	EventCommentCreated     = "comment:created"
	EventApplicationTyping  = "application:userTyping"
)

// PresenceEvent reports a user joining or leaving the online set.
// Emitted as "user:online" and "user:offline".
type PresenceEvent struct {
	UserID string `json:"userId"`
	Online bool   `json:"-"`
}

func (e PresenceEvent) Name() string {
	if e.Online {
		return EventUserOnline
	}
	return EventUserOffline
}

// NotificationEvent is a generic per-user notification.
type NotificationEvent struct {
	Message string `json:"message"`
	Kind    string `json:"type,omitempty"`
}

func (e NotificationEvent) Name() string { return EventNotification }

// BroadcastEvent is a system-wide announcement.
type BroadcastEvent struct {
	Message string `json:"message"`
	Kind    string `json:"type,omitempty"`
}

func (e BroadcastEvent) Name() string { return EventBroadcast }

// ForceLogoutEvent instructs the client to terminate its session
// immediately, independent of the normal teardown path.
type ForceLogoutEvent struct {
	Message string `json:"message"`
}

func (e ForceLogoutEvent) Name() string { return EventForceLogout }

// ApplicationStatusEvent reports a visa application status change.
type ApplicationStatusEvent struct {
	ApplicationID string `json:"applicationId"`
	NewStatus     string `json:"newStatus"`
}

func (e ApplicationStatusEvent) Name() string { return EventApplicationStatus }

// DocumentStatusEvent reports a document review outcome.
type DocumentStatusEvent struct {
	DocumentID      string `json:"documentId"`
	NewStatus       string `json:"newStatus"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

func (e DocumentStatusEvent) Name() string { return EventDocumentStatus }

// PaymentStatusEvent reports a payment state change.
type PaymentStatusEvent struct {
	PaymentID string `json:"paymentId,omitempty"`
	Status    string `json:"status"`
}

func (e PaymentStatusEvent) Name() string { return EventPaymentStatus }

// CommentEvent reports a new comment on an application thread. Not
// acted upon generically — the application view subscribes to these.
type CommentEvent struct {
	ApplicationID string `json:"applicationId"`
	AuthorID      string `json:"authorId"`
	Body          string `json:"body"`
}

func (e CommentEvent) Name() string { return EventCommentCreated }

// TypingEvent reports typing activity in an application thread. Not
// acted upon generically.
type TypingEvent struct {
	ApplicationID string `json:"applicationId"`
	UserID        string `json:"userId"`
}

func (e TypingEvent) Name() string { return EventApplicationTyping }

// frame is the channel's wire framing: an event name plus its payload.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeEvent decodes one wire frame into its typed event. Unknown
// event names return an error; the channel logs and drops them.
func DecodeEvent(name string, data json.RawMessage) (Event, error) {
	decode := func(v any) error {
		if len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("realtime: malformed %s payload: %w", name, err)
		}
		return nil
	}

	switch name {
	case EventUserOnline, EventUserOffline:
		event := PresenceEvent{Online: name == EventUserOnline}
		if err := decode(&event); err != nil {
			return nil, err
		}
		return event, nil
	case EventNotification:
		var event NotificationEvent
		if err := decode(&event); err != nil {
			return nil, err
		}
		return event, nil
	case EventBroadcast:
		var event BroadcastEvent
		if err := decode(&event); err != nil {
			return nil, err
		}
		return event, nil
	case EventForceLogout:
		var event ForceLogoutEvent
		if err := decode(&event); err != nil {
			return nil, err
		}
		return event, nil
	case EventApplicationStatus:
		var event ApplicationStatusEvent
		if err := decode(&event); err != nil {
			return nil, err
		}
		return event, nil
	case EventDocumentStatus:
		var event DocumentStatusEvent
		if err := decode(&event); err != nil {
			return nil, err
		}
		return event, nil
	case EventPaymentStatus:
		var event PaymentStatusEvent
		if err := decode(&event); err != nil {
			return nil, err
		}
		return event, nil
	case EventCommentCreated:
		var event CommentEvent
		if err := decode(&event); err != nil {
			return nil, err
		}
		return event, nil
	case EventApplicationTyping:
		var event TypingEvent
		if err := decode(&event); err != nil {
			return nil, err
		}
		return event, nil
	default:
		return nil, fmt.Errorf("realtime: unknown event %q", name)
	}
}
