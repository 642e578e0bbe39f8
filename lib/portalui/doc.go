// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

// Package portalui holds the terminal UI for the portal: the chat
// view over the inbox synchronizer and a markdown renderer for lesson
// content.
//
// ChatModel is a bubbletea model. It subscribes to the inbox store's
// change signal, so the timeline re-renders once per real snapshot
// change and identical polls never disturb the composer. Network
// calls run inside tea.Cmd functions; their results come back through
// the message loop.
package portalui
