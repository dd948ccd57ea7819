// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/visamark/visamark/lib/clock"
	"github.com/visamark/visamark/lib/testutil"
)

// eventServer is a websocket test server that records handshake
// bearer tokens and pushes frames to each accepted connection from a
// per-connection script.
type eventServer struct {
	t *testing.T

	mu      sync.Mutex
	bearers []string
	dials   int

	// script returns the frames to push on the nth connection
	// (zero-based). After pushing, the connection is closed.
	script func(connection int) []frame
}

func (s *eventServer) handler() http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		s.mu.Lock()
		connection := s.dials
		s.dials++
		s.bearers = append(s.bearers,
			strings.TrimPrefix(request.Header.Get("Authorization"), "Bearer "))
		s.mu.Unlock()

		conn, err := websocket.Accept(writer, request, nil)
		if err != nil {
			s.t.Errorf("websocket accept failed: %v", err)
			return
		}

		ctx := request.Context()
		for _, f := range s.script(connection) {
			data, err := json.Marshal(f)
			if err != nil {
				s.t.Errorf("marshaling frame: %v", err)
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
		conn.Close(websocket.StatusNormalClosure, "")
	}
}

func (s *eventServer) dialCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

// wsURL converts an httptest server URL to a websocket URL.
func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestChannelDeliversEvents(t *testing.T) {
	server := &eventServer{t: t, script: func(connection int) []frame {
		if connection > 0 {
			return nil
		}
		return []frame{
			{Event: EventUserOnline, Data: json.RawMessage(`{"userId":"user-2"}`)},
			{Event: EventNotification, Data: json.RawMessage(`{"message":"hello"}`)},
			{Event: "user:sneezed", Data: nil}, // unknown events are dropped, not fatal
			{Event: EventBroadcast, Data: json.RawMessage(`{"message":"maintenance"}`)},
		}
	}}
	httpServer := httptest.NewServer(server.handler())
	t.Cleanup(httpServer.Close)

	events := make(chan Event, 16)
	channel, err := Open(context.Background(), ChannelConfig{
		URL:         wsURL(httpServer),
		AccessToken: "access-1",
		Handler:     func(event Event) { events <- event },
		Clock:       clock.Fake(time.Now()),
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer channel.Close()

	first := testutil.RequireReceive(t, events, 5*time.Second, "presence event")
	if presence, ok := first.(PresenceEvent); !ok || presence.UserID != "user-2" {
		t.Errorf("first event = %+v", first)
	}
	second := testutil.RequireReceive(t, events, 5*time.Second, "notification event")
	if notification, ok := second.(NotificationEvent); !ok || notification.Message != "hello" {
		t.Errorf("second event = %+v", second)
	}
	// The unknown frame is skipped; the broadcast behind it still
	// arrives.
	third := testutil.RequireReceive(t, events, 5*time.Second, "broadcast event")
	if _, ok := third.(BroadcastEvent); !ok {
		t.Errorf("third event = %+v", third)
	}

	server.mu.Lock()
	bearer := server.bearers[0]
	server.mu.Unlock()
	if bearer != "access-1" {
		t.Errorf("handshake bearer = %q", bearer)
	}
}

func TestChannelReconnects(t *testing.T) {
	server := &eventServer{t: t, script: func(connection int) []frame {
		switch connection {
		case 0:
			// First connection drops immediately after one event.
			return []frame{{Event: EventUserOnline, Data: json.RawMessage(`{"userId":"user-1"}`)}}
		default:
			return []frame{{Event: EventUserOnline, Data: json.RawMessage(`{"userId":"user-2"}`)}}
		}
	}}
	httpServer := httptest.NewServer(server.handler())
	t.Cleanup(httpServer.Close)

	fakeClock := clock.Fake(time.Now())
	events := make(chan Event, 16)
	channel, err := Open(context.Background(), ChannelConfig{
		URL:         wsURL(httpServer),
		AccessToken: "access-1",
		Handler:     func(event Event) { events <- event },
		Clock:       fakeClock,
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer channel.Close()

	testutil.RequireReceive(t, events, 5*time.Second, "event from first connection")

	// The server closed the first connection; the channel is now
	// waiting out the redial delay on the fake clock.
	fakeClock.BlockUntilWaiters(1)
	fakeClock.Advance(reconnectDelay)

	event := testutil.RequireReceive(t, events, 5*time.Second, "event from second connection")
	if presence, ok := event.(PresenceEvent); !ok || presence.UserID != "user-2" {
		t.Errorf("post-reconnect event = %+v", event)
	}
	if server.dialCount() != 2 {
		t.Errorf("dials = %d, want 2", server.dialCount())
	}
}

func TestChannelValidation(t *testing.T) {
	_, err := Open(context.Background(), ChannelConfig{URL: "", AccessToken: "x", Handler: func(Event) {}})
	if err == nil {
		t.Error("expected error for missing URL")
	}
	_, err = Open(context.Background(), ChannelConfig{URL: "ws://localhost:1", AccessToken: "", Handler: func(Event) {}})
	if err == nil {
		t.Error("expected error for missing token")
	}
	_, err = Open(context.Background(), ChannelConfig{URL: "ws://localhost:1", AccessToken: "x"})
	if err == nil {
		t.Error("expected error for missing handler")
	}
}

func TestChannelClose(t *testing.T) {
	server := &eventServer{t: t, script: func(int) []frame { return nil }}
	httpServer := httptest.NewServer(server.handler())
	t.Cleanup(httpServer.Close)

	channel, err := Open(context.Background(), ChannelConfig{
		URL:         wsURL(httpServer),
		AccessToken: "access-1",
		Handler:     func(Event) {},
		Clock:       clock.Fake(time.Now()),
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		channel.Close()
		close(done)
	}()
	testutil.RequireClosed(t, done, 5*time.Second, "Close to return")
	testutil.RequireClosed(t, channel.Done(), time.Second, "read loop shutdown")
}
