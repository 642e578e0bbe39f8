// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("CAMINHO_CONFIG", path)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("CAMINHO_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	t.Setenv("CAMINHO_API_URL", "")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.BaseURL != DefaultBaseURL {
		t.Errorf("base URL = %q, want default", config.BaseURL)
	}

	active, idle, err := config.PollIntervals()
	if err != nil {
		t.Fatalf("PollIntervals: %v", err)
	}
	if active != 0 || idle != 0 {
		t.Errorf("unset intervals should be zero, got %v / %v", active, idle)
	}
}

func TestLoadConfigFile(t *testing.T) {
	writeConfig(t, "base_url: https://staging.caminho.pt/api\npoll_interval: 2s\nunread_interval: 1m\n")
	t.Setenv("CAMINHO_API_URL", "")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.BaseURL != "https://staging.caminho.pt/api" {
		t.Errorf("base URL = %q", config.BaseURL)
	}

	active, idle, err := config.PollIntervals()
	if err != nil {
		t.Fatalf("PollIntervals: %v", err)
	}
	if active != 2*time.Second {
		t.Errorf("active interval = %v, want 2s", active)
	}
	if idle != time.Minute {
		t.Errorf("idle interval = %v, want 1m", idle)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	writeConfig(t, "base_url: https://staging.caminho.pt/api\n")
	t.Setenv("CAMINHO_API_URL", "http://localhost:8080/api")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.BaseURL != "http://localhost:8080/api" {
		t.Errorf("base URL = %q, want env override", config.BaseURL)
	}
}

func TestPollIntervalsMalformed(t *testing.T) {
	config := &Config{PollInterval: "soon"}
	if _, _, err := config.PollIntervals(); err == nil {
		t.Error("expected error for malformed poll_interval")
	}
}
