// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the production portal API root. Override per
// machine via the config file or CAMINHO_API_URL.
const DefaultBaseURL = "https://portal.caminho.pt/api"

// Config is the caminho CLI configuration, read from the path
// returned by ConfigFilePath. Every field is optional; the zero
// config talks to the production portal with default poll cadences.
type Config struct {
	// BaseURL is the portal API root.
	BaseURL string `yaml:"base_url,omitempty"`

	// PollInterval is the message-list poll cadence while the chat
	// view is open, as a Go duration string (e.g., "5s").
	PollInterval string `yaml:"poll_interval,omitempty"`

	// UnreadInterval is the unread-count poll cadence outside the
	// chat view, as a Go duration string (e.g., "30s").
	UnreadInterval string `yaml:"unread_interval,omitempty"`
}

// ConfigFilePath returns the config file path. Checks the
// CAMINHO_CONFIG environment variable first, then falls back to
// ~/.config/caminho/config.yaml.
func ConfigFilePath() string {
	if envPath := os.Getenv("CAMINHO_CONFIG"); envPath != "" {
		return envPath
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join("/tmp", "caminho-config.yaml")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "caminho", "config.yaml")
}

// LoadConfig reads the config file. A missing file yields the zero
// config; a malformed file is an error. The CAMINHO_API_URL
// environment variable overrides the configured base URL.
func LoadConfig() (*Config, error) {
	var config Config

	path := ConfigFilePath()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if envURL := os.Getenv("CAMINHO_API_URL"); envURL != "" {
		config.BaseURL = envURL
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	return &config, nil
}

// PollIntervals returns the configured poll cadences, falling back to
// zero values (which the synchronizer replaces with its defaults) for
// unset fields.
func (c *Config) PollIntervals() (active, idle time.Duration, err error) {
	if c.PollInterval != "" {
		active, err = time.ParseDuration(c.PollInterval)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid poll_interval %q: %w", c.PollInterval, err)
		}
	}
	if c.UnreadInterval != "" {
		idle, err = time.ParseDuration(c.UnreadInterval)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid unread_interval %q: %w", c.UnreadInterval, err)
		}
	}
	return active, idle, nil
}
