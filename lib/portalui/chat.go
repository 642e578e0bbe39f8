// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package portalui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/caminho-app/caminho/inbox"
	"github.com/caminho-app/caminho/portalapi"
)

// noticeFadeDelay is how long an error notice stays in the status bar.
const noticeFadeDelay = 4 * time.Second

// storeChangedMsg is delivered when the inbox store accepts a new
// snapshot. The subscription re-arms after each delivery.
type storeChangedMsg struct{}

// opResultMsg carries the outcome of a send, edit, or delete issued
// from the composer.
type opResultMsg struct {
	err error
}

// selectResultMsg carries the outcome of opening a conversation.
type selectResultMsg struct {
	err error
}

// noticeFadeMsg clears the error notice from the status bar.
type noticeFadeMsg struct{}

// ChatConfig holds configuration for creating a ChatModel.
type ChatConfig struct {
	// Synchronizer drives the store; its Run loop must be started by
	// the caller. Required.
	Synchronizer *inbox.Synchronizer
	// Store is the snapshot store the synchronizer feeds. Required.
	Store *inbox.Store
	// SelfID is the acting account's user id, used to tell own
	// messages from the counterparty's.
	SelfID int64
	// Admin selects the two-level layout: conversation list first,
	// thread after selection.
	Admin bool
	// Theme defaults to DefaultTheme when zero.
	Theme Theme
	// Keys defaults to DefaultKeyMap when zero.
	Keys KeyMap
	// Context bounds the network calls issued from the composer.
	Context context.Context
}

// ChatModel is the bubbletea model for the messaging view.
type ChatModel struct {
	synchronizer *inbox.Synchronizer
	store        *inbox.Store
	selfID       int64
	admin        bool
	theme        Theme
	keys         KeyMap
	ctx          context.Context

	width  int
	height int
	ready  bool

	// Conversation list state (admin only).
	cursor   int
	inThread bool

	timeline viewport.Model
	snapshot inbox.Snapshot

	// Composer.
	input     []rune
	editingID int64 // Nonzero while editing an existing message.

	notice string
}

// NewChat creates a ChatModel. Clients land directly in their thread;
// admins start on the conversation list.
func NewChat(config ChatConfig) ChatModel {
	theme := config.Theme
	if theme.NormalText == "" {
		theme = DefaultTheme
	}
	keys := config.Keys
	if !keys.Quit.Enabled() {
		keys = DefaultKeyMap
	}
	ctx := config.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return ChatModel{
		synchronizer: config.Synchronizer,
		store:        config.Store,
		selfID:       config.SelfID,
		admin:        config.Admin,
		theme:        theme,
		keys:         keys,
		ctx:          ctx,
		inThread:     !config.Admin,
	}
}

// Init starts the store subscription and marks the messaging view
// active so the synchronizer polls on the short cadence.
func (m ChatModel) Init() tea.Cmd {
	m.synchronizer.SetActive(true)
	return tea.Batch(m.waitForChange(), m.refreshNow())
}

// waitForChange blocks until the store signals a change, then
// delivers storeChangedMsg. One subscription is outstanding at a
// time; Update re-arms it on delivery.
func (m ChatModel) waitForChange() tea.Cmd {
	changed := m.store.Changed()
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case <-changed:
			return storeChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// refreshNow fetches the current list immediately rather than waiting
// for the first poll tick.
func (m ChatModel) refreshNow() tea.Cmd {
	return func() tea.Msg {
		if err := m.synchronizer.RefreshMessages(m.ctx); err != nil {
			return opResultMsg{err: err}
		}
		return nil
	}
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		timelineHeight := msg.Height - 4 // header, input, status, border
		if timelineHeight < 1 {
			timelineHeight = 1
		}
		if !m.ready {
			m.timeline = viewport.New(msg.Width, timelineHeight)
			m.ready = true
		} else {
			m.timeline.Width = msg.Width
			m.timeline.Height = timelineHeight
		}
		m.renderTimeline()
		return m, nil

	case storeChangedMsg:
		atBottom := m.timeline.AtBottom()
		m.snapshot = m.store.Snapshot()
		m.renderTimeline()
		if atBottom {
			m.timeline.GotoBottom()
		}
		return m, m.waitForChange()

	case opResultMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
			return m, tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
				return noticeFadeMsg{}
			})
		}
		return m, nil

	case selectResultMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
			return m, tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
				return noticeFadeMsg{}
			})
		}
		m.inThread = true
		m.input = nil
		m.editingID = 0
		return m, nil

	case noticeFadeMsg:
		m.notice = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.synchronizer.SetActive(false)
		return m, tea.Quit
	}

	if m.admin && !m.inThread {
		return m.handleListKey(msg)
	}
	return m.handleThreadKey(msg)
}

func (m ChatModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snapshot.Conversations)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		if m.cursor < len(m.snapshot.Conversations) {
			userID := m.snapshot.Conversations[m.cursor].UserID
			return m, func() tea.Msg {
				return selectResultMsg{err: m.synchronizer.SelectConversation(m.ctx, userID)}
			}
		}
	}
	return m, nil
}

func (m ChatModel) handleThreadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		if m.editingID != 0 {
			// Cancel the edit, keep the thread open.
			m.editingID = 0
			m.input = nil
			return m, nil
		}
		if m.admin {
			m.synchronizer.ClearSelection()
			m.inThread = false
			m.input = nil
			return m, nil
		}
		return m, nil

	case key.Matches(msg, m.keys.Send):
		text := string(m.input)
		editingID := m.editingID
		m.input = nil
		m.editingID = 0
		if editingID != 0 {
			return m, func() tea.Msg {
				_, err := m.synchronizer.Edit(m.ctx, editingID, text)
				return opResultMsg{err: err}
			}
		}
		return m, func() tea.Msg {
			_, err := m.synchronizer.Send(m.ctx, text)
			return opResultMsg{err: err}
		}

	case key.Matches(msg, m.keys.EditLast):
		if id, ok := inbox.ModifiableID(m.snapshot.Messages, m.selfID); ok {
			m.editingID = id
			m.input = []rune(m.messageBody(id))
		}
		return m, nil

	case key.Matches(msg, m.keys.DeleteLast):
		if id, ok := inbox.ModifiableID(m.snapshot.Messages, m.selfID); ok {
			return m, func() tea.Msg {
				return opResultMsg{err: m.synchronizer.Delete(m.ctx, id)}
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown),
		key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		return m, cmd

	default:
		switch msg.Type {
		case tea.KeyRunes, tea.KeySpace:
			m.input = append(m.input, msg.Runes...)
			if msg.Type == tea.KeySpace {
				m.input = append(m.input, ' ')
			}
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		}
	}
	return m, nil
}

// messageBody returns the body of the message with the given id, or
// "" if it is not in the snapshot.
func (m ChatModel) messageBody(id int64) string {
	for _, message := range m.snapshot.Messages {
		if message.ID == id {
			return message.Body
		}
	}
	return ""
}

// renderTimeline rebuilds the viewport content from the snapshot.
func (m *ChatModel) renderTimeline() {
	if !m.ready {
		return
	}
	if m.admin && !m.inThread {
		return
	}

	var b strings.Builder
	for _, message := range m.snapshot.Messages {
		b.WriteString(m.renderMessage(message))
		b.WriteString("\n")
	}
	m.timeline.SetContent(b.String())
}

func (m ChatModel) renderMessage(message portalapi.Message) string {
	own := message.SenderID == m.selfID

	sender := "support"
	senderColor := m.theme.OtherMessage
	if message.IsAdminMessage {
		senderColor = m.theme.AdminBadge
	}
	if own {
		sender = "you"
		senderColor = m.theme.OwnMessage
	}

	timestamp := message.CreatedAt.Local().Format("Jan 2 15:04")
	header := newStyle().Foreground(m.theme.TimestampText).Render(timestamp) +
		"  " + newStyle().Foreground(senderColor).Bold(true).Render(sender)
	if message.Edited() {
		header += " " + newStyle().Foreground(m.theme.EditedMarker).Render("(edited)")
	}

	width := m.width - 2
	if width < 10 {
		width = 10
	}
	body := ansi.Wrap(message.Body, width, "")

	return header + "\n" + body + "\n"
}

func (m ChatModel) View() string {
	if !m.ready {
		return "loading..."
	}

	if m.admin && !m.inThread {
		return m.viewConversationList()
	}
	return m.viewThread()
}

func (m ChatModel) viewConversationList() string {
	var b strings.Builder
	header := newStyle().Foreground(m.theme.HeaderForeground).Bold(true).Render("Conversations")
	b.WriteString(header + "\n\n")

	if len(m.snapshot.Conversations) == 0 {
		b.WriteString(newStyle().Foreground(m.theme.FaintText).Render("no conversations yet") + "\n")
	}
	for i, conversation := range m.snapshot.Conversations {
		line := conversation.UserName
		if conversation.LastMessage != nil {
			preview := conversation.LastMessage.Body
			preview = ansi.Truncate(preview, 40, "…")
			line += "  " + newStyle().Foreground(m.theme.FaintText).Render(preview)
		}
		if conversation.UnreadCount > 0 {
			badge := fmt.Sprintf(" [%d]", conversation.UnreadCount)
			line += newStyle().Foreground(m.theme.UnreadBadge).Bold(true).Render(badge)
		}
		if i == m.cursor {
			line = newStyle().
				Background(m.theme.SelectedBackground).
				Foreground(m.theme.SelectedForeground).
				Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + m.statusBar("Enter open · ↑/↓ move · C-c quit"))
	return b.String()
}

func (m ChatModel) viewThread() string {
	prompt := "> "
	if m.editingID != 0 {
		prompt = newStyle().Foreground(m.theme.UnreadBadge).Render("edit> ")
	}
	inputLine := prompt + string(m.input)

	help := "Enter send · C-e edit last · C-x delete last · C-c quit"
	if m.admin {
		help = "Esc back · " + help
	}

	return m.timeline.View() + "\n" +
		newStyle().Foreground(m.theme.BorderColor).Render(strings.Repeat("─", max(m.width, 1))) + "\n" +
		inputLine + "\n" +
		m.statusBar(help)
}

func (m ChatModel) statusBar(help string) string {
	if m.notice != "" {
		return newStyle().Foreground(m.theme.ErrorText).Render(m.notice)
	}
	bar := newStyle().Foreground(m.theme.HelpText).Render(help)
	if m.snapshot.Unread > 0 {
		unread := fmt.Sprintf("  %d unread", m.snapshot.Unread)
		bar += newStyle().Foreground(m.theme.UnreadBadge).Render(unread)
	}
	return bar
}
