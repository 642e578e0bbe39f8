// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package inbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/caminho-app/caminho/lib/clock"
	"github.com/caminho-app/caminho/lib/testutil"
	"github.com/caminho-app/caminho/portalapi"
)

// fakeService is an in-memory MessageService. Every call pushes its
// name onto calls so tests can observe exactly which requests were
// issued and when.
type fakeService struct {
	mu            sync.Mutex
	messages      []portalapi.Message
	userMessages  map[int64][]portalapi.Message
	conversations []portalapi.Conversation
	unread        int
	nextID        int64
	sendErr       error
	updateErr     error
	deleteErr     error

	calls chan string
}

func newFakeService() *fakeService {
	return &fakeService{
		userMessages: make(map[int64][]portalapi.Message),
		nextID:       100,
		calls:        make(chan string, 64),
	}
}

func (f *fakeService) record(name string) {
	select {
	case f.calls <- name:
	default:
	}
}

func (f *fakeService) Messages(ctx context.Context) ([]portalapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Messages")
	return append([]portalapi.Message(nil), f.messages...), nil
}

func (f *fakeService) SendMessage(ctx context.Context, text string, recipientID *int64) (*portalapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SendMessage")
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	at := threadBase.Add(time.Duration(f.nextID) * time.Second)
	message := portalapi.Message{
		ID:          f.nextID,
		SenderID:    7,
		RecipientID: recipientID,
		Body:        text,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	f.messages = append(f.messages, message)
	return &message, nil
}

func (f *fakeService) UpdateMessage(ctx context.Context, id int64, text string) (*portalapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateMessage")
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.messages {
		if f.messages[i].ID == id {
			f.messages[i].Body = text
			f.messages[i].UpdatedAt = f.messages[i].UpdatedAt.Add(time.Minute)
			message := f.messages[i]
			return &message, nil
		}
	}
	return nil, errors.New("message not found")
}

func (f *fakeService) DeleteMessage(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteMessage")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.messages {
		if f.messages[i].ID == id {
			f.messages = append(f.messages[:i], f.messages[i+1:]...)
			return nil
		}
	}
	return errors.New("message not found")
}

func (f *fakeService) UnreadCount(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UnreadCount")
	return f.unread, nil
}

func (f *fakeService) Conversations(ctx context.Context) ([]portalapi.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Conversations")
	return append([]portalapi.Conversation(nil), f.conversations...), nil
}

func (f *fakeService) UserMessages(ctx context.Context, userID int64) ([]portalapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UserMessages")
	// Fetching marks the thread read, like the real backend.
	for i := range f.conversations {
		if f.conversations[i].UserID == userID {
			f.unread -= f.conversations[i].UnreadCount
			f.conversations[i].UnreadCount = 0
		}
	}
	return append([]portalapi.Message(nil), f.userMessages[userID]...), nil
}

func newTestSynchronizer(t *testing.T, service *fakeService, admin bool, clk clock.Clock) (*Synchronizer, *Store) {
	t.Helper()
	store := NewStore()
	synchronizer, err := NewSynchronizer(SynchronizerConfig{
		Service: service,
		Store:   store,
		Admin:   admin,
		Clock:   clk,
	})
	if err != nil {
		t.Fatalf("NewSynchronizer: %v", err)
	}
	return synchronizer, store
}

// drainCalls empties the recorded call channel.
func drainCalls(service *fakeService) {
	for {
		select {
		case <-service.calls:
		default:
			return
		}
	}
}

func TestSendEmptyBodyIsNoOp(t *testing.T) {
	service := newFakeService()
	synchronizer, store := newTestSynchronizer(t, service, false, nil)

	for _, text := range []string{"", "   ", "\n\t  "} {
		message, err := synchronizer.Send(context.Background(), text)
		if err != nil {
			t.Fatalf("Send(%q): %v", text, err)
		}
		if message != nil {
			t.Errorf("Send(%q) returned a message", text)
		}
	}

	select {
	case name := <-service.calls:
		t.Fatalf("empty send issued a %s call", name)
	default:
	}
	if len(store.Snapshot().Messages) != 0 {
		t.Error("empty send mutated the local thread")
	}
}

func TestSendAppendsServerRecord(t *testing.T) {
	service := newFakeService()
	synchronizer, store := newTestSynchronizer(t, service, false, nil)
	store.ReconcileMessages([]portalapi.Message{makeMessage(1, "earlier")})

	message, err := synchronizer.Send(context.Background(), "  hello there  ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if message.Body != "hello there" {
		t.Errorf("sent body = %q, want trimmed", message.Body)
	}

	messages := store.Snapshot().Messages
	if len(messages) != 2 {
		t.Fatalf("thread length = %d, want 2", len(messages))
	}
	last := messages[len(messages)-1]
	if last.ID != message.ID || last.ID <= 100 {
		t.Errorf("appended id = %d, want server-assigned %d", last.ID, message.ID)
	}
	seen := 0
	for _, m := range messages {
		if m.ID == message.ID {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("new message appears %d times, want exactly once", seen)
	}

	// Send refreshes the unread counter afterwards.
	testutil.RequireReceive(t, service.calls, time.Second, "send call")
	if got := testutil.RequireReceive(t, service.calls, time.Second, "unread refresh"); got != "UnreadCount" {
		t.Errorf("call after send = %s, want UnreadCount", got)
	}
}

func TestSendAdminRequiresSelection(t *testing.T) {
	service := newFakeService()
	synchronizer, _ := newTestSynchronizer(t, service, true, nil)

	if _, err := synchronizer.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for admin send without a selected conversation")
	}
	select {
	case name := <-service.calls:
		t.Fatalf("unselected admin send issued a %s call", name)
	default:
	}
}

func TestSendFailureLeavesStateUntouched(t *testing.T) {
	service := newFakeService()
	service.sendErr = errors.New("network down")
	synchronizer, store := newTestSynchronizer(t, service, false, nil)
	store.ReconcileMessages([]portalapi.Message{makeMessage(1, "earlier")})
	generation := store.Generation()

	if _, err := synchronizer.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected send error")
	}
	if store.Generation() != generation {
		t.Error("failed send mutated the store")
	}
}

func TestEditReplacesInPlace(t *testing.T) {
	service := newFakeService()
	original := makeMessage(2, "tpyo")
	service.messages = []portalapi.Message{makeMessage(1, "a"), original, makeMessage(3, "c")}
	synchronizer, store := newTestSynchronizer(t, service, false, nil)
	store.ReconcileMessages(service.messages)

	message, err := synchronizer.Edit(context.Background(), 2, "typo")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if message.ID != 2 {
		t.Errorf("edited id = %d", message.ID)
	}

	messages := store.Snapshot().Messages
	if len(messages) != 3 {
		t.Fatalf("edit changed thread length to %d", len(messages))
	}
	if messages[1].ID != 2 || messages[1].Body != "typo" {
		t.Errorf("message not edited in place: %+v", messages[1])
	}
	if !messages[1].CreatedAt.Equal(original.CreatedAt) {
		t.Error("edit lost the original created_at")
	}
	if !messages[1].Edited() {
		t.Error("edited message not flagged as edited")
	}
}

func TestEditEmptyBodyRejected(t *testing.T) {
	service := newFakeService()
	synchronizer, _ := newTestSynchronizer(t, service, false, nil)

	if _, err := synchronizer.Edit(context.Background(), 2, "   "); err == nil {
		t.Fatal("expected error for empty edit")
	}
	select {
	case name := <-service.calls:
		t.Fatalf("empty edit issued a %s call", name)
	default:
	}
}

func TestDeletePrunesLocally(t *testing.T) {
	service := newFakeService()
	service.messages = []portalapi.Message{makeMessage(1, "a"), makeMessage(2, "b")}
	synchronizer, store := newTestSynchronizer(t, service, false, nil)
	store.ReconcileMessages(service.messages)

	if err := synchronizer.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, m := range store.Snapshot().Messages {
		if m.ID == 1 {
			t.Error("deleted message still in local thread")
		}
	}

	t.Run("failure leaves local state untouched", func(t *testing.T) {
		service.deleteErr = errors.New("forbidden")
		generation := store.Generation()
		drainCalls(service)
		if err := synchronizer.Delete(context.Background(), 2); err == nil {
			t.Fatal("expected delete error")
		}
		if store.Generation() != generation {
			t.Error("failed delete mutated the store")
		}
	})
}

func TestSelectConversationDropsUnread(t *testing.T) {
	// Admin selects conversation 7 with 3 unread messages. The thread
	// fetch marks them read server-side; the follow-up conversation
	// and unread refreshes must drop 7's contribution from the local
	// totals.
	service := newFakeService()
	service.conversations = []portalapi.Conversation{
		{UserID: 7, UserName: "Ana", UnreadCount: 3},
		{UserID: 9, UserName: "Bruno", UnreadCount: 1},
	}
	service.unread = 4
	service.userMessages[7] = []portalapi.Message{
		makeMessage(1, "a"), makeMessage(2, "b"), makeMessage(3, "c"),
		makeMessage(4, "d"), makeMessage(5, "e"),
	}
	synchronizer, store := newTestSynchronizer(t, service, true, nil)
	store.ReconcileConversations(service.conversations)
	store.ReconcileUnread(4)

	if err := synchronizer.SelectConversation(context.Background(), 7); err != nil {
		t.Fatalf("SelectConversation: %v", err)
	}

	snapshot := store.Snapshot()
	if len(snapshot.Messages) != 5 {
		t.Errorf("thread length = %d, want 5", len(snapshot.Messages))
	}
	if snapshot.Unread != 1 {
		t.Errorf("unread = %d, want 1 (only Bruno's remains)", snapshot.Unread)
	}
	for _, c := range snapshot.Conversations {
		if c.UserID == 7 && c.UnreadCount != 0 {
			t.Errorf("selected conversation still shows %d unread", c.UnreadCount)
		}
	}
	if selected, ok := synchronizer.Selected(); !ok || selected != 7 {
		t.Errorf("Selected() = %d, %v", selected, ok)
	}
}

func TestSelectConversationIsAdminOnly(t *testing.T) {
	service := newFakeService()
	synchronizer, _ := newTestSynchronizer(t, service, false, nil)
	if err := synchronizer.SelectConversation(context.Background(), 7); err == nil {
		t.Fatal("expected admin-only error")
	}
}

func TestPollLoop(t *testing.T) {
	epoch := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

	t.Run("identical polls trigger exactly one update", func(t *testing.T) {
		service := newFakeService()
		service.messages = []portalapi.Message{makeMessage(1, "hello")}
		clk := clock.Fake(epoch)
		synchronizer, store := newTestSynchronizer(t, service, false, clk)
		synchronizer.SetActive(true)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			synchronizer.Run(ctx)
		}()
		clk.WaitForTimers(2)

		// First poll: empty store to populated is a real change.
		clk.Advance(5 * time.Second)
		if got := testutil.RequireReceive(t, service.calls, time.Second, "first poll"); got != "Messages" {
			t.Fatalf("first poll call = %s", got)
		}
		testutil.RequireReceive(t, store.Changed(), time.Second, "first poll change signal")

		// Second poll returns identical content: the fetch happens but
		// the store must not signal.
		clk.Advance(5 * time.Second)
		testutil.RequireReceive(t, service.calls, time.Second, "second poll")
		testutil.RequireNoReceive(t, store.Changed(), 50*time.Millisecond, "identical poll must not signal")

		cancel()
		testutil.RequireClosed(t, done, time.Second, "Run exit")
	})

	t.Run("inactive view suspends list polling", func(t *testing.T) {
		service := newFakeService()
		clk := clock.Fake(epoch)
		synchronizer, _ := newTestSynchronizer(t, service, false, clk)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			synchronizer.Run(ctx)
		}()
		clk.WaitForTimers(2)

		// View never activated: short ticks fire but fetch nothing.
		clk.Advance(5 * time.Second)
		clk.Advance(5 * time.Second)
		testutil.RequireNoReceive(t, service.calls, 50*time.Millisecond, "inactive view must not poll the list")

		// The long cadence still refreshes the unread count.
		clk.Advance(20 * time.Second)
		if got := testutil.RequireReceive(t, service.calls, time.Second, "idle unread poll"); got != "UnreadCount" {
			t.Fatalf("idle poll call = %s, want UnreadCount", got)
		}

		cancel()
		testutil.RequireClosed(t, done, time.Second, "Run exit")
	})

	t.Run("active admin polls the conversation list", func(t *testing.T) {
		service := newFakeService()
		service.conversations = []portalapi.Conversation{{UserID: 7, UserName: "Ana"}}
		clk := clock.Fake(epoch)
		synchronizer, store := newTestSynchronizer(t, service, true, clk)
		synchronizer.SetActive(true)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			synchronizer.Run(ctx)
		}()
		clk.WaitForTimers(2)

		clk.Advance(5 * time.Second)
		if got := testutil.RequireReceive(t, service.calls, time.Second, "admin poll"); got != "Conversations" {
			t.Fatalf("admin poll call = %s, want Conversations", got)
		}
		testutil.RequireReceive(t, store.Changed(), time.Second, "conversation list change")

		cancel()
		testutil.RequireClosed(t, done, time.Second, "Run exit")
	})
}

func TestModifiableID(t *testing.T) {
	thread := []portalapi.Message{
		{ID: 1, SenderID: 7},
		{ID: 2, SenderID: 1, IsAdminMessage: true},
		{ID: 3, SenderID: 7},
		{ID: 4, SenderID: 1, IsAdminMessage: true},
	}

	if id, ok := ModifiableID(thread, 7); !ok || id != 3 {
		t.Errorf("ModifiableID(client) = %d, %v; want 3, true", id, ok)
	}
	if id, ok := ModifiableID(thread, 1); !ok || id != 4 {
		t.Errorf("ModifiableID(admin) = %d, %v; want 4, true", id, ok)
	}
	if _, ok := ModifiableID(thread, 99); ok {
		t.Error("ModifiableID found a message for a non-participant")
	}
	if _, ok := ModifiableID(nil, 7); ok {
		t.Error("ModifiableID found a message in an empty thread")
	}
}
