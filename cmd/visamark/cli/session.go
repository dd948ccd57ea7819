// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/visamark/visamark/api"
	"github.com/visamark/visamark/lib/config"
	"github.com/visamark/visamark/lib/secret"
)

// StoredSession is the on-disk authentication state. Written by
// "visamark login" and "visamark register", loaded automatically by
// every command that talks to the platform, and refreshed in place
// when the access token rotates. Analogous to SSH keys — set up once,
// then transparent.
type StoredSession struct {
	// User is the signed-in account as last reported by the server.
	User api.User `json:"user"`

	// AccessToken is the short-lived bearer token attached to every
	// API request.
	AccessToken string `json:"access_token"`

	// RefreshToken is the long-lived token exchanged for a new pair
	// when the access token expires.
	RefreshToken string `json:"refresh_token"`

	// BaseURL is the API base the session was created against.
	// Commands use it so a session stays bound to the server that
	// issued it even if the local config later changes.
	BaseURL string `json:"base_url"`
}

// SessionFilePath returns the path to the stored session file. Checks
// the VISAMARK_SESSION_FILE environment variable first, then falls
// back to ~/.config/visamark/session.json.
func SessionFilePath() string {
	if envPath := os.Getenv("VISAMARK_SESSION_FILE"); envPath != "" {
		return envPath
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			// Fallback — this should rarely happen.
			return filepath.Join("/tmp", "visamark-session.json")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "visamark", "session.json")
}

// LoadStoredSession reads the session from the well-known path.
// Returns a clear error directing the user to "visamark login" if no
// session exists.
func LoadStoredSession() (*StoredSession, error) {
	return LoadStoredSessionFrom(SessionFilePath())
}

// LoadStoredSessionFrom reads a session from a specific file path.
func LoadStoredSessionFrom(path string) (*StoredSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Auth("not signed in — run \"visamark login\" first")
		}
		return nil, fmt.Errorf("reading session file %s: %w", path, err)
	}

	var stored StoredSession
	if err := json.Unmarshal(data, &stored); err != nil {
		secret.Zero(data)
		return nil, fmt.Errorf("parsing session file %s: %w", path, err)
	}
	secret.Zero(data)

	if stored.AccessToken == "" {
		return nil, fmt.Errorf("session file %s has no access_token", path)
	}
	if stored.RefreshToken == "" {
		return nil, fmt.Errorf("session file %s has no refresh_token", path)
	}
	return &stored, nil
}

// SaveStoredSession writes the session to the well-known path.
func SaveStoredSession(stored *StoredSession) error {
	return SaveStoredSessionTo(stored, SessionFilePath())
}

// SaveStoredSessionTo writes a session to a specific file path. The
// parent directory is created with mode 0700 if needed; the file is
// written with mode 0600 since it contains tokens.
func SaveStoredSessionTo(stored *StoredSession, path string) error {
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		secret.Zero(data)
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}

	writeError := os.WriteFile(path, data, 0600)
	secret.Zero(data)
	if writeError != nil {
		return fmt.Errorf("writing session file %s: %w", path, writeError)
	}
	return nil
}

// DeleteStoredSession removes the session file. Missing file is not
// an error — the end state is the same either way.
func DeleteStoredSession() error {
	err := os.Remove(SessionFilePath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// Connect loads the stored session and returns a live api.Session
// bound to it. Token rotation is persisted back to the session file,
// and a rejected refresh deletes the file so the next command prompts
// for login instead of failing the same way again.
func Connect(logger *slog.Logger) (*api.Session, error) {
	stored, err := LoadStoredSession()
	if err != nil {
		return nil, err
	}

	baseURL := stored.BaseURL
	if baseURL == "" {
		cfg, configErr := config.Load("")
		if configErr != nil {
			return nil, configErr
		}
		baseURL = cfg.API.BaseURL
	}

	client, err := api.NewClient(api.ClientConfig{
		BaseURL: baseURL,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	session := client.SessionFromCredentials(stored.User, api.TokenPair{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
	})
	session.OnCredentialsChanged = func(pair api.TokenPair) {
		updated := *stored
		updated.AccessToken = pair.AccessToken
		updated.RefreshToken = pair.RefreshToken
		if err := SaveStoredSession(&updated); err != nil {
			logger.Warn("persisting rotated credentials failed", "error", err)
		}
	}
	session.OnInvalidate = func() {
		if err := DeleteStoredSession(); err != nil {
			logger.Warn("removing stale session file failed", "error", err)
		}
	}
	return session, nil
}
