// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caminho-app/caminho/portalapi"
)

// StoredSession is the on-disk login state. Stored at the well-known
// path returned by SessionFilePath and loaded automatically by
// commands that require authentication. Set up once via
// "caminho login", then transparent.
type StoredSession struct {
	// Token is the portal bearer token.
	Token string `json:"token"`

	// User is the account the token belongs to, cached so commands
	// can show who is logged in without a network round trip.
	User portalapi.User `json:"user"`
}

// SessionFilePath returns the path to the session file. Checks the
// CAMINHO_SESSION_FILE environment variable first, then falls back to
// ~/.config/caminho/session.json.
func SessionFilePath() string {
	if envPath := os.Getenv("CAMINHO_SESSION_FILE"); envPath != "" {
		return envPath
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join("/tmp", "caminho-session.json")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "caminho", "session.json")
}

// SessionStore reads and writes the session file. It implements
// portalapi.TokenStore, so the file is the single source of truth for
// the bearer token: a 401-triggered eviction deletes it, and every
// request reads the current token from disk.
type SessionStore struct {
	path string
}

// NewSessionStore returns a store over the well-known session path.
func NewSessionStore() *SessionStore {
	return &SessionStore{path: SessionFilePath()}
}

// Load reads the stored session. Returns a clear error directing the
// user to "caminho login" if no session exists.
func (s *SessionStore) Load() (*StoredSession, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no session found at %s — run \"caminho login\" first", s.path)
		}
		return nil, fmt.Errorf("reading session file %s: %w", s.path, err)
	}

	var session StoredSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", s.path, err)
	}
	if session.Token == "" {
		return nil, fmt.Errorf("session file %s has no token — run \"caminho login\" again", s.path)
	}
	return &session, nil
}

// Save writes the session with mode 0600 (it contains a bearer
// token), creating the parent directory with mode 0700 if needed.
func (s *SessionStore) Save(session *StoredSession) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(s.path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing session file %s: %w", s.path, err)
	}
	return nil
}

// Token implements portalapi.TokenStore. A missing session file means
// logged out, not an error.
func (s *SessionStore) Token() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading session file %s: %w", s.path, err)
	}
	var session StoredSession
	if err := json.Unmarshal(data, &session); err != nil {
		return "", fmt.Errorf("parsing session file %s: %w", s.path, err)
	}
	return session.Token, nil
}

// SetToken implements portalapi.TokenStore, preserving the cached
// user record if one is stored.
func (s *SessionStore) SetToken(token string) error {
	session, err := s.Load()
	if err != nil {
		session = &StoredSession{}
	}
	session.Token = token
	return s.Save(session)
}

// Clear implements portalapi.TokenStore by deleting the session file.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file %s: %w", s.path, err)
	}
	return nil
}

var _ portalapi.TokenStore = (*SessionStore)(nil)
