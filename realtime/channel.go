// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/visamark/visamark/lib/clock"
)

// reconnectDelay is the fixed wait between redial attempts after a
// connection drop. Matches the transport's default reconnection
// cadence; the channel never escalates or changes connection
// parameters on its own.
const reconnectDelay = 3 * time.Second

// ChannelConfig configures a Channel.
type ChannelConfig struct {
	// URL is the websocket URL of the event channel
	// (e.g., "ws://localhost:5555/events").
	URL string

	// AccessToken authenticates the connection. Captured at open time;
	// a credential rotated later does not re-authenticate an already
	// open connection.
	AccessToken string

	// Handler receives every decoded event, in arrival order. Usually
	// a Dispatcher's Handle method.
	Handler func(Event)

	// HTTPClient is used for the websocket handshake. If nil,
	// http.DefaultClient is used.
	HTTPClient *http.Client

	// Logger is used for structured logging. Connection errors are
	// logged here, never surfaced to the user. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	// Clock paces reconnection. If nil, the real clock is used.
	Clock clock.Clock
}

// Channel is a live connection to the platform's event service. It is
// opened only while a session exists, authenticates with the access
// credential at open time, and is explicitly closed on session
// teardown — the one deliberate resource-release point in the client.
//
// Connection drops are logged and followed by a fixed-delay redial;
// they never affect request/response flows and are never surfaced to
// the user.
type Channel struct {
	config ChannelConfig
	cancel context.CancelFunc
	done   chan struct{}
}

// Open dials the event channel and starts the read loop. The returned
// Channel runs until Close is called or ctx is cancelled.
func Open(ctx context.Context, config ChannelConfig) (*Channel, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("realtime: URL is required")
	}
	if config.AccessToken == "" {
		return nil, fmt.Errorf("realtime: access token is required")
	}
	if config.Handler == nil {
		return nil, fmt.Errorf("realtime: event handler is required")
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}

	// Fail fast when the first dial is refused outright, so callers
	// can distinguish misconfiguration from a transient mid-session
	// drop.
	conn, err := dial(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("realtime: connecting to %s: %w", config.URL, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	channel := &Channel{
		config: config,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go channel.run(runCtx, conn)
	return channel, nil
}

// Close tears the connection down. Idempotent.
func (c *Channel) Close() error {
	c.cancel()
	<-c.done
	return nil
}

// Done is closed when the read loop has fully stopped.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

func dial(ctx context.Context, config ChannelConfig) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+config.AccessToken)

	conn, _, err := websocket.Dial(ctx, config.URL, &websocket.DialOptions{
		HTTPClient: config.HTTPClient,
		HTTPHeader: header,
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// run reads frames until the context is cancelled, redialing after
// drops with a fixed delay.
func (c *Channel) run(ctx context.Context, conn *websocket.Conn) {
	defer close(c.done)

	for {
		c.readLoop(ctx, conn)
		conn = nil

		// Redial until the context ends. Errors are logged only.
		for conn == nil {
			select {
			case <-ctx.Done():
				return
			case <-c.config.Clock.After(reconnectDelay):
			}

			redialed, err := dial(ctx, c.config)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.config.Logger.Debug("event channel redial failed", "error", err)
				continue
			}
			c.config.Logger.Info("event channel reconnected")
			conn = redialed
		}
	}
}

// readLoop consumes frames from one connection until it errors or the
// context is cancelled.
func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				c.config.Logger.Debug("event channel read failed", "error", err)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.config.Logger.Debug("malformed event frame", "error", err)
			continue
		}

		event, err := DecodeEvent(f.Event, f.Data)
		if err != nil {
			c.config.Logger.Debug("dropping event", "event", f.Event, "error", err)
			continue
		}
		c.config.Handler(event)
	}
}
