// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "visamark.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	config, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Environment != Development {
		t.Errorf("environment = %q, want development", config.Environment)
	}
	if config.API.BaseURL != "http://localhost:5555/api/v1" {
		t.Errorf("api base URL = %q", config.API.BaseURL)
	}
	if config.Channel.URL != "ws://localhost:5555/events" {
		t.Errorf("channel URL = %q", config.Channel.URL)
	}
}

func TestLoadFromEnvironmentVariable(t *testing.T) {
	path := writeConfigFile(t, `
environment: staging
api:
  base_url: https://staging.example.com/api/v1
channel:
  url: wss://staging.example.com/events
`)
	t.Setenv(EnvConfigPath, path)

	config, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Environment != Staging {
		t.Errorf("environment = %q, want staging", config.Environment)
	}
	if config.API.BaseURL != "https://staging.example.com/api/v1" {
		t.Errorf("api base URL = %q", config.API.BaseURL)
	}
}

func TestLoadExplicitPathWinsOverEnvironment(t *testing.T) {
	envPath := writeConfigFile(t, `
api:
  base_url: https://env.example.com/api/v1
`)
	flagPath := writeConfigFile(t, `
api:
  base_url: https://flag.example.com/api/v1
`)
	t.Setenv(EnvConfigPath, envPath)

	config, err := Load(flagPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.API.BaseURL != "https://flag.example.com/api/v1" {
		t.Errorf("api base URL = %q, want flag file value", config.API.BaseURL)
	}
}

func TestLoadMissingNamedFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for a named file that does not exist")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
api:
  base_url: https://partial.example.com/api/v1
`)
	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.API.BaseURL != "https://partial.example.com/api/v1" {
		t.Errorf("api base URL = %q", config.API.BaseURL)
	}
	// Unspecified fields retain their defaults.
	if config.Channel.URL != "ws://localhost:5555/events" {
		t.Errorf("channel URL = %q, want default", config.Channel.URL)
	}
	if config.Environment != Development {
		t.Errorf("environment = %q, want development", config.Environment)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeConfigFile(t, `
environment: production
api:
  base_url: https://base.example.com/api/v1
channel:
  url: wss://base.example.com/events
staging:
  api:
    base_url: https://staging.example.com/api/v1
production:
  api:
    base_url: https://prod.example.com/api/v1
`)
	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// Only the section matching the active environment applies.
	if config.API.BaseURL != "https://prod.example.com/api/v1" {
		t.Errorf("api base URL = %q, want production override", config.API.BaseURL)
	}
	if config.Channel.URL != "wss://base.example.com/events" {
		t.Errorf("channel URL = %q, want base value", config.Channel.URL)
	}
}

func TestLoadRejectsUnknownEnvironment(t *testing.T) {
	path := writeConfigFile(t, `
environment: sandbox
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown environment")
	}
	if !strings.Contains(err.Error(), "sandbox") {
		t.Errorf("error %q does not name the bad environment", err)
	}
}

func TestLoadRejectsEmptyEndpoint(t *testing.T) {
	path := writeConfigFile(t, `
api:
  base_url: ""
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for empty api.base_url")
	}
}
