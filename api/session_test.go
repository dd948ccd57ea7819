// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// refreshServer is a test server that rejects requests bearing stale
// access tokens and rotates the pair on /auth/refresh. It counts
// refresh calls so tests can assert the single-refresh protocol.
type refreshServer struct {
	t *testing.T

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	refreshCalls int
	failRefresh  bool
}

func (rs *refreshServer) handler() http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/auth/refresh":
			rs.mu.Lock()
			rs.refreshCalls++
			fail := rs.failRefresh
			var body map[string]string
			json.NewDecoder(request.Body).Decode(&body)
			validRefresh := body["refreshToken"] == rs.refreshToken
			if !fail && validRefresh {
				rs.accessToken = rs.accessToken + "+"
				rs.refreshToken = rs.refreshToken + "+"
			}
			access, refresh := rs.accessToken, rs.refreshToken
			rs.mu.Unlock()

			if fail || !validRefresh {
				writeError(writer, http.StatusUnauthorized, "Refresh token expired", nil)
				return
			}
			writeEnvelope(rs.t, writer, map[string]any{
				"accessToken":  access,
				"refreshToken": refresh,
			})

		case "/auth/me":
			rs.mu.Lock()
			current := rs.accessToken
			rs.mu.Unlock()

			bearer := strings.TrimPrefix(request.Header.Get("Authorization"), "Bearer ")
			if bearer != current {
				writeError(writer, http.StatusUnauthorized, "Token expired", nil)
				return
			}
			writeEnvelope(rs.t, writer, map[string]any{
				"_id":   "user-1",
				"email": "maria@example.com",
			})

		default:
			rs.t.Errorf("unexpected path: %s", request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)
		}
	}
}

// newRefreshFixture creates a refreshServer where the session holds a
// stale access token ("stale") while the server now wants "current".
// The session's refresh token is still valid, so the refresh protocol
// can recover.
func newRefreshFixture(t *testing.T) (*refreshServer, *Session) {
	t.Helper()
	rs := &refreshServer{t: t, accessToken: "current", refreshToken: "refresh-1"}
	server := httptest.NewServer(rs.handler())
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	session := client.SessionFromCredentials(User{ID: "user-1"}, TokenPair{
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
	})
	return rs, session
}

func TestSessionRefreshRetry(t *testing.T) {
	t.Run("401 triggers one refresh and one retry", func(t *testing.T) {
		rs, session := newRefreshFixture(t)

		var changed []TokenPair
		session.OnCredentialsChanged = func(pair TokenPair) { changed = append(changed, pair) }

		identity, err := session.WhoAmI(context.Background())
		if err != nil {
			t.Fatalf("WhoAmI failed: %v", err)
		}
		if identity.ID != "user-1" {
			t.Errorf("identity.ID = %q", identity.ID)
		}
		if rs.refreshCalls != 1 {
			t.Errorf("refresh calls = %d, want 1", rs.refreshCalls)
		}

		// Both credentials rotated and the persistence hook saw the
		// new pair.
		pair := session.Credentials()
		if pair.AccessToken != "current+" || pair.RefreshToken != "refresh-1+" {
			t.Errorf("credentials after refresh = %+v", pair)
		}
		if len(changed) != 1 || changed[0].AccessToken != "current+" {
			t.Errorf("OnCredentialsChanged calls = %v", changed)
		}
	})

	t.Run("second 401 is returned without a second refresh", func(t *testing.T) {
		callsToMe := 0
		rs := &refreshServer{t: t, accessToken: "current", refreshToken: "refresh-1"}
		inner := rs.handler()
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path == "/auth/me" {
				// Reject every attempt, refreshed or not.
				callsToMe++
				writeError(writer, http.StatusUnauthorized, "Token expired", nil)
				return
			}
			inner(writer, request)
		}))
		t.Cleanup(server.Close)

		client, err := NewClient(ClientConfig{BaseURL: server.URL})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		session := client.SessionFromCredentials(User{}, TokenPair{
			AccessToken:  "stale",
			RefreshToken: "refresh-1",
		})

		_, err = session.WhoAmI(context.Background())
		if !IsUnauthorized(err) {
			t.Fatalf("err = %v, want 401", err)
		}
		if callsToMe != 2 {
			t.Errorf("attempts = %d, want exactly 2 (original + one retry)", callsToMe)
		}
		if rs.refreshCalls != 1 {
			t.Errorf("refresh calls = %d, want 1", rs.refreshCalls)
		}
	})

	t.Run("refresh failure tears the session down", func(t *testing.T) {
		rs, session := newRefreshFixture(t)
		rs.failRefresh = true

		invalidations := 0
		session.OnInvalidate = func() { invalidations++ }

		_, err := session.WhoAmI(context.Background())
		if err == nil {
			t.Fatal("expected error after failed refresh")
		}
		if session.Valid() {
			t.Error("session still valid after failed refresh")
		}
		if invalidations != 1 {
			t.Errorf("OnInvalidate calls = %d, want 1", invalidations)
		}
		pair := session.Credentials()
		if pair.AccessToken != "" || pair.RefreshToken != "" {
			t.Errorf("credentials not cleared: %+v", pair)
		}
	})

	t.Run("no refresh credential propagates the original 401", func(t *testing.T) {
		rs := &refreshServer{t: t, accessToken: "current", refreshToken: "refresh-1"}
		server := httptest.NewServer(rs.handler())
		t.Cleanup(server.Close)

		client, err := NewClient(ClientConfig{BaseURL: server.URL})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		session := client.SessionFromCredentials(User{}, TokenPair{AccessToken: "stale"})

		_, err = session.WhoAmI(context.Background())
		if !IsUnauthorized(err) {
			t.Fatalf("err = %v, want 401", err)
		}
		if rs.refreshCalls != 0 {
			t.Error("refresh attempted without a refresh credential")
		}
	})

	t.Run("bodyless 401 from a proxy still triggers the refresh", func(t *testing.T) {
		rs := &refreshServer{t: t, accessToken: "current", refreshToken: "refresh-1"}
		inner := rs.handler()
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			bearer := strings.TrimPrefix(request.Header.Get("Authorization"), "Bearer ")
			if request.URL.Path == "/auth/me" && bearer == "stale" {
				// A proxy rejecting the request answers with no body at all.
				writer.WriteHeader(http.StatusUnauthorized)
				return
			}
			inner(writer, request)
		}))
		t.Cleanup(server.Close)

		client, err := NewClient(ClientConfig{BaseURL: server.URL})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		session := client.SessionFromCredentials(User{}, TokenPair{
			AccessToken:  "stale",
			RefreshToken: "refresh-1",
		})

		if _, err := session.WhoAmI(context.Background()); err != nil {
			t.Fatalf("WhoAmI failed: %v", err)
		}
		if rs.refreshCalls != 1 {
			t.Errorf("refresh calls = %d, want 1", rs.refreshCalls)
		}
	})

	t.Run("concurrent 401s share one refresh", func(t *testing.T) {
		rs, session := newRefreshFixture(t)

		const workers = 8
		var group sync.WaitGroup
		var failures atomic.Int32
		for range workers {
			group.Add(1)
			go func() {
				defer group.Done()
				if _, err := session.WhoAmI(context.Background()); err != nil {
					failures.Add(1)
				}
			}()
		}
		group.Wait()

		if failures.Load() != 0 {
			t.Errorf("%d of %d concurrent requests failed", failures.Load(), workers)
		}
		if rs.refreshCalls != 1 {
			t.Errorf("refresh calls = %d, want 1", rs.refreshCalls)
		}
	})
}

func TestLogout(t *testing.T) {
	t.Run("revokes and invalidates", func(t *testing.T) {
		var revoked string
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/auth/logout" {
				t.Errorf("unexpected path: %s", request.URL.Path)
			}
			var body map[string]string
			json.NewDecoder(request.Body).Decode(&body)
			revoked = body["refreshToken"]
			writeEnvelope(t, writer, nil)
		}))
		t.Cleanup(server.Close)

		client, err := NewClient(ClientConfig{BaseURL: server.URL})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		session := client.SessionFromCredentials(User{}, TokenPair{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
		})

		invalidations := 0
		session.OnInvalidate = func() { invalidations++ }

		session.Logout(context.Background())
		if revoked != "refresh-1" {
			t.Errorf("revoked refresh token = %q", revoked)
		}
		if session.Valid() {
			t.Error("session still valid after logout")
		}
		if invalidations != 1 {
			t.Errorf("OnInvalidate calls = %d, want 1", invalidations)
		}
	})

	t.Run("server failure still tears down locally", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writeError(writer, http.StatusInternalServerError, "boom", nil)
		}))
		t.Cleanup(server.Close)

		client, err := NewClient(ClientConfig{BaseURL: server.URL})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		session := client.SessionFromCredentials(User{}, TokenPair{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
		})

		session.Logout(context.Background())
		if session.Valid() {
			t.Error("session still valid after logout")
		}
	})
}
