// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command framework and shared plumbing for
// the caminho CLI: the Command tree, exit codes, structured logging,
// the session file (which doubles as the portal API token store), and
// YAML configuration.
package cli
