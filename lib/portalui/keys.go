// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package portalui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the chat view.
type KeyMap struct {
	// Navigation: conversation list cursor or timeline scrolling,
	// depending on focus.
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Conversation list (admin).
	Select key.Binding // Open the conversation under the cursor.
	Back   key.Binding // Return to the conversation list / cancel edit.

	// Composer.
	Send       key.Binding
	EditLast   key.Binding // Start editing the acting party's latest message.
	DeleteLast key.Binding // Delete the acting party's latest message.

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("PgUp", "scroll up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("PgDn", "scroll down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "open"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "back"),
	),
	Send: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "send"),
	),
	EditLast: key.NewBinding(
		key.WithKeys("ctrl+e"),
		key.WithHelp("C-e", "edit last"),
	),
	DeleteLast: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("C-x", "delete last"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
}
