// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package portalui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// uiRenderer forces the ANSI256 color profile so styled output is
// produced even when no TTY is attached (tests, piped output).
var uiRenderer = func() *lipgloss.Renderer {
	renderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	renderer.SetColorProfile(termenv.ANSI256)
	return renderer
}()

func newStyle() lipgloss.Style { return uiRenderer.NewStyle() }

// Theme defines the color palette for the portal's terminal UIs. All
// colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Chat bubbles.
	OwnMessage    lipgloss.Color // Messages sent by the acting party.
	OtherMessage  lipgloss.Color // Messages from the counterparty.
	AdminBadge    lipgloss.Color // The back-office sender tag.
	EditedMarker  lipgloss.Color // The "(edited)" suffix.
	TimestampText lipgloss.Color

	// Conversation list.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color
	UnreadBadge        lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	ErrorText        lipgloss.Color

	// Markdown (lesson content).
	HeadingText   lipgloss.Color
	CodeText      lipgloss.Color
	QuoteText     lipgloss.Color
	LinkText      lipgloss.Color
	ListBulletTxt lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	OwnMessage:    lipgloss.Color("75"),  // blue
	OtherMessage:  lipgloss.Color("252"), // default text
	AdminBadge:    lipgloss.Color("208"), // orange
	EditedMarker:  lipgloss.Color("240"), // dim gray
	TimestampText: lipgloss.Color("241"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),
	UnreadBadge:        lipgloss.Color("220"), // amber

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	ErrorText:        lipgloss.Color("196"), // bright red

	HeadingText:   lipgloss.Color("255"),
	CodeText:      lipgloss.Color("114"), // green
	QuoteText:     lipgloss.Color("245"),
	LinkText:      lipgloss.Color("75"),
	ListBulletTxt: lipgloss.Color("245"),
}
