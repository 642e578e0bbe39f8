// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package portalapi

import "sync"

// TokenStore holds the bearer token between requests. The portal
// treats the stored token as the whole of its persisted local state:
// an empty token means logged out.
//
// Mutations are last-writer-wins. Login writes, logout and any 401
// clear; concurrent overlap between those is acceptable because every
// outcome is recoverable by logging in again.
type TokenStore interface {
	// Token returns the stored bearer token, or "" when logged out.
	Token() (string, error)

	// SetToken replaces the stored token.
	SetToken(token string) error

	// Clear removes the stored token.
	Clear() error
}

// MemoryTokenStore is a process-local TokenStore. It is the default
// when ClientConfig.Tokens is nil, and what tests use.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryTokenStore returns an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Token returns the stored token.
func (s *MemoryTokenStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// SetToken replaces the stored token.
func (s *MemoryTokenStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear removes the stored token.
func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
