// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Applications lists the user's visa applications, newest first, with
// their status history.
func (s *Session) Applications(ctx context.Context) ([]Application, error) {
	body, err := s.do(ctx, http.MethodGet, "/applications", nil)
	if err != nil {
		return nil, fmt.Errorf("api: fetch applications failed: %w", err)
	}

	var applications []Application
	if err := json.Unmarshal(body, &applications); err != nil {
		return nil, fmt.Errorf("api: failed to parse applications response: %w", err)
	}
	return applications, nil
}

// UpdateNotificationSettings replaces the account's notification
// channel configuration.
func (s *Session) UpdateNotificationSettings(ctx context.Context, settings NotificationSettings) error {
	_, err := s.do(ctx, http.MethodPut, "/settings/notifications", settings)
	if err != nil {
		return fmt.Errorf("api: update notification settings failed: %w", err)
	}
	return nil
}

// UpdatePreferences replaces the account's display preferences.
func (s *Session) UpdatePreferences(ctx context.Context, preferences Preferences) error {
	_, err := s.do(ctx, http.MethodPut, "/settings/preferences", preferences)
	if err != nil {
		return fmt.Errorf("api: update preferences failed: %w", err)
	}
	return nil
}
