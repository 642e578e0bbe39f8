// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/caminho-app/caminho/portalapi"
)

// NewPortalClient builds a portal API client wired to the config file
// and the session-file token store. A 401 from any endpoint deletes
// the session file and tells the user to log in again.
func NewPortalClient(logger *slog.Logger) (*portalapi.Client, *SessionStore, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	store := NewSessionStore()
	client, err := portalapi.NewClient(portalapi.ClientConfig{
		BaseURL: config.BaseURL,
		Logger:  logger,
		Tokens:  store,
		OnAuthFailure: func() {
			fmt.Fprintln(os.Stderr, "session expired — run \"caminho login\" to sign in again")
		},
	})
	if err != nil {
		return nil, nil, err
	}
	return client, store, nil
}

// RequireSession resumes the stored session, validating the token
// against the portal. Commands that need authentication call this
// first and get a clear "run caminho login" error when there is no
// usable session.
func RequireSession(ctx context.Context, logger *slog.Logger) (*portalapi.Session, error) {
	client, store, err := NewPortalClient(logger)
	if err != nil {
		return nil, err
	}
	if _, err := store.Load(); err != nil {
		return nil, err
	}
	session, err := client.Resume(ctx)
	if err != nil {
		if portalapi.IsAuthError(err) {
			return nil, fmt.Errorf("session expired — run \"caminho login\" to sign in again")
		}
		return nil, err
	}
	return session, nil
}

// RequireAdminSession resumes the stored session and verifies the
// account has the admin role before any admin command runs. The
// backend enforces authorization on every admin endpoint regardless;
// this check just fails fast with a readable message.
func RequireAdminSession(ctx context.Context, logger *slog.Logger) (*portalapi.Session, error) {
	session, err := RequireSession(ctx, logger)
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() {
		return nil, fmt.Errorf("this command requires an admin account (logged in as %s)", session.User().Email)
	}
	return session, nil
}
