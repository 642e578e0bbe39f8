// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package inbox

import (
	"slices"
	"sync"

	"github.com/caminho-app/caminho/portalapi"
)

// Snapshot is one consistent view of the messaging state. Exactly one
// of Conversations or Messages is populated depending on the role:
// admins hold the conversation list until a conversation is selected,
// clients always hold their own thread.
type Snapshot struct {
	Conversations []portalapi.Conversation
	Messages      []portalapi.Message
	Unread        int
}

// Store holds the current snapshot and gates updates on structural
// change. All methods are safe for concurrent use; the synchronizer's
// poll goroutine and the view's event loop both touch it.
type Store struct {
	mu         sync.Mutex
	current    Snapshot
	generation uint64
	changed    chan struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{changed: make(chan struct{}, 1)}
}

// Snapshot returns a copy of the current snapshot. The slices are
// cloned so the caller can hold the result across later reconciles.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Conversations: slices.Clone(s.current.Conversations),
		Messages:      slices.Clone(s.current.Messages),
		Unread:        s.current.Unread,
	}
}

// Generation returns a counter that increments on every accepted
// change. Two equal generations bracket a window in which the
// snapshot did not change.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Changed returns a channel that receives after every accepted
// change. The channel has capacity 1 and notifications coalesce: a
// slow consumer sees at least one signal for any burst of changes.
// No-op reconciles never signal.
func (s *Store) Changed() <-chan struct{} {
	return s.changed
}

// ReconcileMessages replaces the message thread if the incoming
// sequence differs structurally from the held one. Any difference
// counts — reordering, a changed body, or timestamp jitter all force
// a replacement. Reports whether the snapshot changed.
func (s *Store) ReconcileMessages(messages []portalapi.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if messagesEqual(s.current.Messages, messages) {
		return false
	}
	s.current.Messages = slices.Clone(messages)
	s.bump()
	return true
}

// ReconcileConversations replaces the conversation list if the
// incoming sequence differs structurally from the held one. Reports
// whether the snapshot changed.
func (s *Store) ReconcileConversations(conversations []portalapi.Conversation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conversationsEqual(s.current.Conversations, conversations) {
		return false
	}
	s.current.Conversations = slices.Clone(conversations)
	s.bump()
	return true
}

// ReconcileUnread replaces the unread counter if it differs. Reports
// whether the snapshot changed.
func (s *Store) ReconcileUnread(unread int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Unread == unread {
		return false
	}
	s.current.Unread = unread
	s.bump()
	return true
}

// AppendMessage adds a server-confirmed message to the end of the
// thread. Server-assigned ordering is trusted: no re-sort. If the id
// is already present (a poll landed between send and confirmation)
// the append is skipped so the message appears exactly once.
func (s *Store) AppendMessage(message portalapi.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.current.Messages {
		if existing.ID == message.ID {
			return
		}
	}
	s.current.Messages = append(s.current.Messages, message)
	s.bump()
}

// ReplaceMessage swaps in a server-confirmed edit, preserving the
// message's position in the thread. Unknown ids are ignored — the
// message may have been pruned by a concurrent poll.
func (s *Store) ReplaceMessage(message portalapi.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.current.Messages {
		if existing.ID == message.ID {
			if existing.Equal(message) {
				return
			}
			s.current.Messages[i] = message
			s.bump()
			return
		}
	}
}

// RemoveMessage prunes a deleted message from the thread. No
// tombstone, no undo. Unknown ids are a no-op.
func (s *Store) RemoveMessage(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.current.Messages {
		if existing.ID == id {
			s.current.Messages = slices.Delete(s.current.Messages, i, i+1)
			s.bump()
			return
		}
	}
}

// ClearMessages empties the message thread without touching the
// conversation list or unread counter. Used when the admin deselects
// a conversation.
func (s *Store) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.current.Messages) == 0 {
		return
	}
	s.current.Messages = nil
	s.bump()
}

// bump records an accepted change and signals the watcher. Callers
// hold s.mu.
func (s *Store) bump() {
	s.generation++
	select {
	case s.changed <- struct{}{}:
	default:
		// A signal is already pending; the watcher will pick up this
		// change when it drains the channel.
	}
}

func messagesEqual(a, b []portalapi.Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func conversationsEqual(a, b []portalapi.Conversation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
