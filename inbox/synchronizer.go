// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/caminho-app/caminho/lib/clock"
	"github.com/caminho-app/caminho/portalapi"
)

// MessageService is the slice of the portal API the synchronizer
// needs. *portalapi.Session satisfies it.
type MessageService interface {
	Messages(ctx context.Context) ([]portalapi.Message, error)
	SendMessage(ctx context.Context, text string, recipientID *int64) (*portalapi.Message, error)
	UpdateMessage(ctx context.Context, id int64, text string) (*portalapi.Message, error)
	DeleteMessage(ctx context.Context, id int64) error
	UnreadCount(ctx context.Context) (int, error)
	Conversations(ctx context.Context) ([]portalapi.Conversation, error)
	UserMessages(ctx context.Context, userID int64) ([]portalapi.Message, error)
}

// SynchronizerConfig holds configuration for creating a Synchronizer.
type SynchronizerConfig struct {
	// Service is the backend messaging surface. Required.
	Service MessageService
	// Store receives reconciled snapshots. Required.
	Store *Store
	// Admin selects the polling shape: admins poll the conversation
	// list until a conversation is selected, clients poll their own
	// thread.
	Admin bool
	// ActiveInterval is the poll cadence while the messaging view is
	// active. Defaults to 5 seconds.
	ActiveInterval time.Duration
	// IdleInterval is the unread-count cadence while the messaging
	// view is inactive. Defaults to 30 seconds.
	IdleInterval time.Duration
	// Clock drives the poll timers. If nil, clock.Real() is used.
	Clock clock.Clock
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Synchronizer keeps a Store in step with the backend. Create one per
// authenticated session, call Run in a goroutine, and toggle
// SetActive as the messaging view gains and loses focus.
type Synchronizer struct {
	service MessageService
	store   *Store
	admin   bool

	activeInterval time.Duration
	idleInterval   time.Duration
	clock          clock.Clock
	logger         *slog.Logger

	stateMu  sync.Mutex
	active   bool
	selected *int64
}

// NewSynchronizer creates a Synchronizer.
func NewSynchronizer(config SynchronizerConfig) (*Synchronizer, error) {
	if config.Service == nil {
		return nil, fmt.Errorf("inbox: Service is required")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("inbox: Store is required")
	}

	activeInterval := config.ActiveInterval
	if activeInterval <= 0 {
		activeInterval = 5 * time.Second
	}
	idleInterval := config.IdleInterval
	if idleInterval <= 0 {
		idleInterval = 30 * time.Second
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Synchronizer{
		service:        config.Service,
		store:          config.Store,
		admin:          config.Admin,
		activeInterval: activeInterval,
		idleInterval:   idleInterval,
		clock:          clk,
		logger:         logger,
	}
	return s, nil
}

// SetActive marks the messaging view active or inactive. While
// active, the full list is polled on the short cadence; while
// inactive, only the unread count is polled on the long cadence.
func (s *Synchronizer) SetActive(active bool) {
	s.stateMu.Lock()
	s.active = active
	s.stateMu.Unlock()
}

// Selected returns the currently selected conversation's user id, or
// 0, false when none is selected.
func (s *Synchronizer) Selected() (int64, bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.selected == nil {
		return 0, false
	}
	return *s.selected, true
}

// SelectConversation switches the admin view to one client's thread.
// Fetching the thread marks it read server-side, so the conversation
// list and unread counter are refreshed afterwards to drop that
// conversation's unread contribution. Any in-progress edit state is
// the view's to discard; the synchronizer holds none.
func (s *Synchronizer) SelectConversation(ctx context.Context, userID int64) error {
	if !s.admin {
		return fmt.Errorf("inbox: conversation selection is admin-only")
	}

	messages, err := s.service.UserMessages(ctx, userID)
	if err != nil {
		return fmt.Errorf("inbox: loading conversation %d: %w", userID, err)
	}

	s.stateMu.Lock()
	s.selected = &userID
	s.stateMu.Unlock()

	s.store.ReconcileMessages(messages)

	// Best effort: the thread is already loaded and read; a failed
	// follow-up refresh just leaves the sidebar stale until the next
	// poll.
	if conversations, err := s.service.Conversations(ctx); err != nil {
		s.logger.Warn("conversation list refresh after selection failed", "error", err)
	} else {
		s.store.ReconcileConversations(conversations)
	}
	s.refreshUnreadLogged(ctx)
	return nil
}

// ClearSelection returns the admin view to the conversation list.
func (s *Synchronizer) ClearSelection() {
	s.stateMu.Lock()
	s.selected = nil
	s.stateMu.Unlock()
	s.store.ClearMessages()
}

// Send posts a message to the current thread. Empty and
// whitespace-only bodies are a complete no-op: no network call, no
// local mutation, nil error. On success the server's record is
// appended to the end of the thread and the unread counter is
// refreshed.
func (s *Synchronizer) Send(ctx context.Context, text string) (*portalapi.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	var recipientID *int64
	if s.admin {
		s.stateMu.Lock()
		recipientID = s.selected
		s.stateMu.Unlock()
		if recipientID == nil {
			return nil, fmt.Errorf("inbox: no conversation selected")
		}
	}

	message, err := s.service.SendMessage(ctx, text, recipientID)
	if err != nil {
		return nil, fmt.Errorf("inbox: send failed: %w", err)
	}

	s.store.AppendMessage(*message)
	s.refreshUnreadLogged(ctx)
	return message, nil
}

// Edit replaces a message's body. On success the server's record is
// swapped in at the message's existing position, so its id and
// timestamps are whatever the server reports and no duplicate entry
// appears. Eligibility is the view's concern (see ModifiableID); the
// server is the real enforcement point and its rejections surface
// here as errors.
func (s *Synchronizer) Edit(ctx context.Context, id int64, text string) (*portalapi.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("inbox: edit text is empty")
	}

	message, err := s.service.UpdateMessage(ctx, id, text)
	if err != nil {
		return nil, fmt.Errorf("inbox: edit failed: %w", err)
	}

	s.store.ReplaceMessage(*message)
	s.refreshUnreadLogged(ctx)
	return message, nil
}

// Delete removes a message. On success the local copy is pruned and
// the unread counter refreshed. Local state is untouched on failure —
// mutation only happens after the server confirms.
func (s *Synchronizer) Delete(ctx context.Context, id int64) error {
	if err := s.service.DeleteMessage(ctx, id); err != nil {
		return fmt.Errorf("inbox: delete failed: %w", err)
	}
	s.store.RemoveMessage(id)
	s.refreshUnreadLogged(ctx)
	return nil
}

// RefreshMessages fetches the list the current view shape calls for —
// the selected thread, the client's own thread, or the admin
// conversation list — and reconciles it into the store.
func (s *Synchronizer) RefreshMessages(ctx context.Context) error {
	if !s.admin {
		messages, err := s.service.Messages(ctx)
		if err != nil {
			return fmt.Errorf("inbox: message refresh failed: %w", err)
		}
		s.store.ReconcileMessages(messages)
		return nil
	}

	s.stateMu.Lock()
	selected := s.selected
	s.stateMu.Unlock()

	if selected != nil {
		messages, err := s.service.UserMessages(ctx, *selected)
		if err != nil {
			return fmt.Errorf("inbox: conversation refresh failed: %w", err)
		}
		s.store.ReconcileMessages(messages)
		return nil
	}

	conversations, err := s.service.Conversations(ctx)
	if err != nil {
		return fmt.Errorf("inbox: conversation list refresh failed: %w", err)
	}
	s.store.ReconcileConversations(conversations)
	return nil
}

// RefreshUnread fetches the unread counter and reconciles it into the
// store.
func (s *Synchronizer) RefreshUnread(ctx context.Context) error {
	unread, err := s.service.UnreadCount(ctx)
	if err != nil {
		return fmt.Errorf("inbox: unread refresh failed: %w", err)
	}
	s.store.ReconcileUnread(unread)
	return nil
}

func (s *Synchronizer) refreshUnreadLogged(ctx context.Context) {
	if err := s.RefreshUnread(ctx); err != nil {
		s.logger.Warn("unread count refresh failed", "error", err)
	}
}

// Run drives the poll loop until ctx is cancelled. Two tickers run
// throughout: the short one refreshes the full list while the view is
// active, the long one refreshes the unread count while it is not.
// The active flag gates which tick does work, so flipping SetActive
// suspends one cadence without tearing down the loop. Poll failures
// are logged and retried by nature of the next tick.
func (s *Synchronizer) Run(ctx context.Context) {
	activeTicker := s.clock.NewTicker(s.activeInterval)
	defer activeTicker.Stop()
	idleTicker := s.clock.NewTicker(s.idleInterval)
	defer idleTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-activeTicker.C:
			s.stateMu.Lock()
			active := s.active
			s.stateMu.Unlock()
			if !active {
				continue
			}
			if err := s.RefreshMessages(ctx); err != nil {
				s.logger.Warn("poll failed", "error", err)
			}
		case <-idleTicker.C:
			s.stateMu.Lock()
			active := s.active
			s.stateMu.Unlock()
			if active {
				continue
			}
			if err := s.RefreshUnread(ctx); err != nil {
				s.logger.Warn("unread poll failed", "error", err)
			}
		}
	}
}

// ModifiableID returns the id of the one message the acting party may
// edit or delete from the view: their most recent message in the
// thread. This is display policy only — the server applies its own
// authorization to every edit and delete regardless of what the view
// offered.
func ModifiableID(messages []portalapi.Message, senderID int64) (int64, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].SenderID == senderID {
			return messages[i].ID, true
		}
	}
	return 0, false
}
