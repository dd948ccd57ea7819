// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
)

// Session is an authenticated platform session: the identity plus the
// access/refresh credential pair issued by the same login, register,
// or refresh cycle. A Session is the single chokepoint for every
// authenticated request.
//
// Sessions are safe for concurrent use. A request that fails with 401
// triggers at most one credential refresh and exactly one retry of the
// original request; concurrent 401s from parallel requests share a
// single refresh call. When the refresh itself fails, the Session is
// invalidated: identity and both credentials are cleared, the
// OnInvalidate hook fires, and the refresh failure propagates to the
// caller.
type Session struct {
	client *Client

	mu           sync.Mutex
	identity     User
	accessToken  string
	refreshToken string

	// refreshMu serializes refresh attempts so that concurrent 401s
	// issue one refresh call, not one per failed request.
	refreshMu sync.Mutex

	// OnCredentialsChanged, if set, is called with the new pair after
	// a successful refresh, before the original request is retried.
	// Used to persist rotated credentials.
	OnCredentialsChanged func(TokenPair)

	// OnInvalidate, if set, is called once when the session is
	// destroyed after a refresh failure. Used to clear persisted
	// credentials and route the user back to login.
	OnInvalidate func()
}

// Client returns the underlying API client, for the handful of
// unauthenticated calls (guest question fetch) that a command may
// want to make alongside session calls.
func (s *Session) Client() *Client {
	return s.client
}

// Identity returns the authenticated user, or the zero User if the
// session has been invalidated.
func (s *Session) Identity() User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Credentials returns the current credential pair. Empty after
// invalidation.
func (s *Session) Credentials() TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TokenPair{AccessToken: s.accessToken, RefreshToken: s.refreshToken}
}

// SetIdentity replaces the cached identity without touching the
// credentials. Used after profile edits.
func (s *Session) SetIdentity(identity User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
}

// Valid reports whether the session still holds credentials.
func (s *Session) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken != ""
}

// invalidate clears the identity and both credentials and fires the
// OnInvalidate hook. Idempotent: the hook fires only on the first call.
func (s *Session) invalidate() {
	s.mu.Lock()
	wasValid := s.accessToken != ""
	s.identity = User{}
	s.accessToken = ""
	s.refreshToken = ""
	s.mu.Unlock()

	if wasValid && s.OnInvalidate != nil {
		s.OnInvalidate()
	}
}

// WhoAmI validates the session against the platform and returns the
// authoritative identity. Useful for checking whether persisted
// credentials are still accepted; the refresh protocol applies, so a
// stale access credential with a live refresh credential still
// succeeds.
func (s *Session) WhoAmI(ctx context.Context) (User, error) {
	body, err := s.do(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return User{}, fmt.Errorf("api: whoami failed: %w", err)
	}

	var identity User
	if err := json.Unmarshal(body, &identity); err != nil {
		return User{}, fmt.Errorf("api: failed to parse whoami response: %w", err)
	}
	s.SetIdentity(identity)
	return identity, nil
}

// Logout notifies the platform that the refresh credential should be
// revoked, then invalidates the session locally. The remote call is
// best-effort: its failure is logged and otherwise ignored, and local
// teardown proceeds regardless.
func (s *Session) Logout(ctx context.Context) {
	pair := s.Credentials()
	if pair.RefreshToken != "" {
		_, err := s.client.do(ctx, http.MethodPost, "/auth/logout", pair.AccessToken, map[string]string{
			"refreshToken": pair.RefreshToken,
		})
		if err != nil {
			s.client.logger.Debug("logout notification failed", "error", err)
		}
	}
	s.invalidate()
}

// ChangePassword changes the account password. The server invalidates
// other sessions for the account.
func (s *Session) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	_, err := s.do(ctx, http.MethodPut, "/auth/change-password", map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	})
	if err != nil {
		return fmt.Errorf("api: change password failed: %w", err)
	}
	return nil
}

// UpdateAccount updates mutable identity fields (name, phone) and
// returns the refreshed identity. The credentials are untouched.
func (s *Session) UpdateAccount(ctx context.Context, fields map[string]any) (User, error) {
	body, err := s.do(ctx, http.MethodPut, "/auth/update-profile", fields)
	if err != nil {
		return User{}, fmt.Errorf("api: update account failed: %w", err)
	}

	var identity User
	if err := json.Unmarshal(body, &identity); err != nil {
		return User{}, fmt.Errorf("api: failed to parse update response: %w", err)
	}
	s.SetIdentity(identity)
	return identity, nil
}

// DeleteAccount permanently deletes the account and invalidates the
// session.
func (s *Session) DeleteAccount(ctx context.Context) error {
	_, err := s.do(ctx, http.MethodDelete, "/auth/account", nil)
	if err != nil {
		return fmt.Errorf("api: delete account failed: %w", err)
	}
	s.invalidate()
	return nil
}

// do performs an authenticated request. On a 401 response the session
// refreshes its credentials and retries the original request exactly
// once with the new access credential. A 401 on the retried request is
// returned as-is — it never triggers a second refresh for the same
// original request.
func (s *Session) do(ctx context.Context, method, path string, requestBody any, query ...url.Values) ([]byte, error) {
	s.mu.Lock()
	accessToken := s.accessToken
	s.mu.Unlock()

	body, err := s.client.do(ctx, method, path, accessToken, requestBody, query...)
	if err == nil || !IsUnauthorized(err) {
		return body, err
	}

	newToken, refreshErr := s.refreshAfter(ctx, accessToken)
	if refreshErr != nil {
		return nil, refreshErr
	}
	if newToken == "" {
		// No refresh credential to renew with: propagate the original 401.
		return nil, err
	}

	return s.client.do(ctx, method, path, newToken, requestBody, query...)
}

// doMultipart is the multipart counterpart of do, with the same
// single-retry refresh protocol. The body factory is invoked per
// attempt because a multipart body cannot be replayed after a failed
// first attempt.
func (s *Session) doMultipart(ctx context.Context, method, path string, makeBody func() (contentType string, body *bytes.Buffer, err error)) ([]byte, error) {
	s.mu.Lock()
	accessToken := s.accessToken
	s.mu.Unlock()

	contentType, buffer, err := makeBody()
	if err != nil {
		return nil, err
	}

	body, err := s.client.doMultipart(ctx, method, path, accessToken, contentType, buffer)
	if err == nil || !IsUnauthorized(err) {
		return body, err
	}

	newToken, refreshErr := s.refreshAfter(ctx, accessToken)
	if refreshErr != nil {
		return nil, refreshErr
	}
	if newToken == "" {
		return nil, err
	}

	contentType, buffer, buildErr := makeBody()
	if buildErr != nil {
		return nil, buildErr
	}
	return s.client.doMultipart(ctx, method, path, newToken, contentType, buffer)
}

// refreshAfter renews the credential pair after a 401 observed with
// failedToken. Serialized: when several requests fail at once, the
// first through the lock performs the refresh and the rest find the
// already-rotated credentials and skip straight to their retry.
//
// Returns the access credential to retry with, or "" when no refresh
// credential is held (the caller propagates its original 401). On
// refresh failure the session is invalidated and the failure returned.
func (s *Session) refreshAfter(ctx context.Context, failedToken string) (string, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.Lock()
	currentToken := s.accessToken
	refreshToken := s.refreshToken
	s.mu.Unlock()

	if currentToken != failedToken {
		// Another request already refreshed (or the session was torn
		// down). Retry with whatever is current; an empty token means
		// the session is gone and the retry will fail loudly.
		return currentToken, nil
	}

	if refreshToken == "" {
		return "", nil
	}

	pair, err := s.client.Refresh(ctx, refreshToken)
	if err != nil {
		s.client.logger.Warn("credential refresh failed, destroying session", "error", err)
		s.invalidate()
		return "", err
	}

	// Both credentials are replaced before the original request is
	// retried.
	s.mu.Lock()
	s.accessToken = pair.AccessToken
	s.refreshToken = pair.RefreshToken
	s.mu.Unlock()

	s.client.logger.Debug("credentials refreshed")
	if s.OnCredentialsChanged != nil {
		s.OnCredentialsChanged(pair)
	}
	return pair.AccessToken, nil
}
