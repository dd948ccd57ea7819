// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides deployment configuration for the Visamark
// client.
//
// Configuration is loaded from a single YAML file specified by:
//   - VISAMARK_CONFIG environment variable, or
//   - --config flag passed to the command
//
// When neither is set, built-in local-development defaults apply. The
// config file may contain environment-specific sections (development,
// staging, production) that override base values when the environment
// matches.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// EnvConfigPath is the environment variable naming the config file.
const EnvConfigPath = "VISAMARK_CONFIG"

// Config is the client configuration.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	// API configures the platform HTTP API endpoint.
	API APIConfig `yaml:"api"`

	// Channel configures the realtime event channel endpoint.
	Channel ChannelConfig `yaml:"channel"`

	// EnvironmentOverrides contains per-environment overrides,
	// applied after the base config is loaded.
	Development *Overrides `yaml:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides contains fields that can be overridden per environment.
type Overrides struct {
	API     *APIConfig     `yaml:"api,omitempty"`
	Channel *ChannelConfig `yaml:"channel,omitempty"`
}

// APIConfig configures the platform HTTP API endpoint.
type APIConfig struct {
	// BaseURL is the base URL of the platform API.
	BaseURL string `yaml:"base_url"`
}

// ChannelConfig configures the realtime event channel endpoint.
type ChannelConfig struct {
	// URL is the websocket URL of the event channel.
	URL string `yaml:"url"`
}

// Default returns the local-development configuration used when no
// config file is present.
func Default() *Config {
	return &Config{
		Environment: Development,
		API:         APIConfig{BaseURL: "http://localhost:5555/api/v1"},
		Channel:     ChannelConfig{URL: "ws://localhost:5555/events"},
	}
}

// Load reads the configuration. Resolution order: the explicit path
// argument, then VISAMARK_CONFIG, then built-in defaults. A named file
// that does not exist is an error; falling back silently would hide a
// misconfigured deployment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	config.applyOverrides()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return config, nil
}

// applyOverrides merges the section matching the configured
// environment over the base values.
func (c *Config) applyOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}
	if overrides.API != nil && overrides.API.BaseURL != "" {
		c.API.BaseURL = overrides.API.BaseURL
	}
	if overrides.Channel != nil && overrides.Channel.URL != "" {
		c.Channel.URL = overrides.Channel.URL
	}
}

func (c *Config) validate() error {
	switch c.Environment {
	case Development, Staging, Production:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.Channel.URL == "" {
		return fmt.Errorf("channel.url is required")
	}
	return nil
}
