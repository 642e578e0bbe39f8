// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caminho-app/caminho/portalapi"
)

func tempStore(t *testing.T) *SessionStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	t.Setenv("CAMINHO_SESSION_FILE", path)
	return NewSessionStore()
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store := tempStore(t)

	saved := &StoredSession{
		Token: "tok-abc123",
		User: portalapi.User{
			ID:    7,
			Name:  "Ana Silva",
			Email: "ana@example.pt",
			Role:  portalapi.RoleClient,
		},
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Token != "tok-abc123" {
		t.Errorf("token = %q, want tok-abc123", loaded.Token)
	}
	if loaded.User.Email != "ana@example.pt" {
		t.Errorf("user email = %q", loaded.User.Email)
	}

	info, err := os.Stat(store.path)
	if err != nil {
		t.Fatalf("stat session file: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("session file mode = %o, want 0600", mode)
	}
}

func TestSessionStoreLoadMissing(t *testing.T) {
	store := tempStore(t)

	_, err := store.Load()
	if err == nil {
		t.Fatal("expected error for missing session file")
	}
	if !strings.Contains(err.Error(), "caminho login") {
		t.Errorf("error should direct the user to log in, got: %v", err)
	}
}

func TestSessionStoreTokenInterface(t *testing.T) {
	store := tempStore(t)

	// Missing file is logged out, not an error.
	token, err := store.Token()
	if err != nil {
		t.Fatalf("Token on missing file: %v", err)
	}
	if token != "" {
		t.Errorf("token = %q, want empty", token)
	}

	if err := store.SetToken("tok-new"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	token, err = store.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "tok-new" {
		t.Errorf("token = %q, want tok-new", token)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(store.path); !os.IsNotExist(err) {
		t.Error("session file should be gone after Clear")
	}

	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestSetTokenPreservesUser(t *testing.T) {
	store := tempStore(t)

	if err := store.Save(&StoredSession{
		Token: "tok-old",
		User:  portalapi.User{ID: 7, Name: "Ana Silva", Email: "ana@example.pt"},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.SetToken("tok-refreshed"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Token != "tok-refreshed" {
		t.Errorf("token = %q, want tok-refreshed", loaded.Token)
	}
	if loaded.User.Name != "Ana Silva" {
		t.Errorf("cached user lost on token refresh: %+v", loaded.User)
	}
}
