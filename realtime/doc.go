// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

// Package realtime consumes the Visamark platform's server-pushed
// event channel.
//
// [Channel] holds a websocket connection to the event service,
// authenticated with the session's access credential at open time. It
// exists only while a session exists: opened after login or session
// restore, closed on teardown. Dropped connections are redialed with a
// fixed delay; connection errors are logged, never shown to the user,
// and never affect request/response flows.
//
// Every frame decodes into the closed [Event] union via [DecodeEvent].
// [Dispatcher] maps the union onto its side effects: presence events
// maintain the online-user set, notification/broadcast/domain events
// surface transient messages through a [Notifier], and forced logout
// clears credentials and exits to the login entry outside the normal
// teardown path. Comment and typing events are forwarded to view-level
// consumers untouched.
//
// Pushed events and fetched state are not required to be mutually
// consistent at every instant: a status-change event may render before
// or after a concurrent fetch of the same resource completes.
package realtime
