package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatapp/internal/store"
	"chatapp/pkg/domain"
)

func newTestApp(t *testing.T) (*App, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	a, err := New(Config{Store: mem})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, mem
}

func TestCreateUserIdempotentByEmail(t *testing.T) {
	a, _ := newTestApp(t)
	first, err := a.CreateUser("Alice", "a@x.com", "111", "http://img/a.png")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	second, err := a.CreateUser("Mallory", "a@x.com", "999", "http://img/m.png")
	if err != nil {
		t.Fatalf("create user again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate email should return the same user, got ids %d and %d", first.ID, second.ID)
	}
	if second.UserName != "Alice" || second.PhoneNumber != "111" || second.ImageURL != "http://img/a.png" {
		t.Fatalf("duplicate create must not mutate the stored record, got %+v", second)
	}
}

func TestCreateConversationSeedsChat(t *testing.T) {
	a, _ := newTestApp(t)
	owner, err := a.CreateUser("Alice", "a@x.com", "", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	conv, err := a.CreateConversation("", owner.ID, "Hi", false)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	if conv.ID == "" {
		t.Fatalf("conversation id should be generated when not supplied")
	}
	feed, err := a.ListChatMessages(conv.ID)
	if err != nil {
		t.Fatalf("list chat messages: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("fresh conversation should have exactly one message, got %d", len(feed))
	}
	if feed[0].Text != "Hi" {
		t.Fatalf("seed chat text = %q, want the conversation title", feed[0].Text)
	}
	if feed[0].User.ID != owner.ID {
		t.Fatalf("seed chat author = %d, want owner %d", feed[0].User.ID, owner.ID)
	}
}

func TestCreateConversationUnknownUser(t *testing.T) {
	a, _ := newTestApp(t)
	if _, err := a.CreateConversation("", 99, "Hi", false); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateConversationMissingIDIsNoOp(t *testing.T) {
	a, mem := newTestApp(t)
	if err := a.UpdateConversation("no-such-id", true); err != nil {
		t.Fatalf("update of missing conversation should succeed, got %v", err)
	}
	if _, ok, _ := mem.GetConversation("no-such-id"); ok {
		t.Fatalf("no-op update must not create a row")
	}
}

func TestDeleteConversationLeavesChats(t *testing.T) {
	a, mem := newTestApp(t)
	owner, _ := a.CreateUser("Alice", "a@x.com", "", "")
	conv, err := a.CreateConversation("", owner.ID, "Hi", false)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	if _, err := a.CreateChatMessage(owner.ID, "follow-up", conv.ID); err != nil {
		t.Fatalf("create chat message: %v", err)
	}
	if err := a.DeleteConversation(conv.ID); err != nil {
		t.Fatalf("delete conversation: %v", err)
	}
	// No cascade: the chats keep their now-dangling conversationId.
	chats, err := mem.ListChatsByConversation(conv.ID)
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("chats should survive conversation deletion, got %d", len(chats))
	}
	if _, err := a.ListChatMessages(conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("feed of deleted conversation should be not-found, got %v", err)
	}
	// Deleting again stays a silent no-op.
	if err := a.DeleteConversation(conv.ID); err != nil {
		t.Fatalf("repeat delete should succeed, got %v", err)
	}
}

func TestListChatMessagesBotAttribution(t *testing.T) {
	a, mem := newTestApp(t)
	bot, _ := a.CreateUser("Chat AI", "bot@x.com", "", "")
	if bot.ID != domain.BotUserID {
		t.Fatalf("first user should take the bot id, got %d", bot.ID)
	}
	a.CreateUser("Bob", "b@x.com", "", "")
	owner, _ := a.CreateUser("Carol", "c@x.com", "", "")

	conv, err := a.CreateConversation("", owner.ID, "hello", false)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	if _, err := a.CreateChatMessage(bot.ID, "from the bot", conv.ID); err != nil {
		t.Fatalf("create bot message: %v", err)
	}
	// A legacy row authored by neither bot nor owner, inserted below the
	// operation layer.
	now := time.Now().UTC()
	if _, err := mem.CreateChat(domain.Chat{
		Text:           "third party",
		ConversationID: conv.ID,
		UserID:         42,
		CreatedAt:      now,
		UpdatedAt:      now,
	}); err != nil {
		t.Fatalf("insert chat: %v", err)
	}

	feed, err := a.ListChatMessages(conv.ID)
	if err != nil {
		t.Fatalf("list chat messages: %v", err)
	}
	if len(feed) != 3 {
		t.Fatalf("feed length = %d, want 3", len(feed))
	}
	if feed[0].User.ID != owner.ID {
		t.Fatalf("seed chat attributed to %d, want owner %d", feed[0].User.ID, owner.ID)
	}
	if feed[1].User.ID != bot.ID || feed[1].User.UserName != "Chat AI" {
		t.Fatalf("bot chat attributed to %+v, want the bot user", feed[1].User)
	}
	// Non-bot authors always resolve to the conversation owner, even when
	// the recorded author is someone else entirely.
	if feed[2].User.ID != owner.ID {
		t.Fatalf("third-party chat attributed to %d, want owner %d", feed[2].User.ID, owner.ID)
	}
}

func TestCreateChatMessageNotFound(t *testing.T) {
	a, _ := newTestApp(t)
	if _, err := a.CreateChatMessage(99, "hi", "whatever"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	user, _ := a.CreateUser("Alice", "a@x.com", "", "")
	if _, err := a.CreateChatMessage(user.ID, "hi", "missing-conv"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestListUserConversationsOrder(t *testing.T) {
	a, _ := newTestApp(t)
	owner, _ := a.CreateUser("Alice", "a@x.com", "", "")
	first, _ := a.CreateConversation("", owner.ID, "first", false)
	second, _ := a.CreateConversation("", owner.ID, "second", true)
	items, err := a.ListUserConversations(owner.ID)
	if err != nil {
		t.Fatalf("list conversations: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("conversation count = %d, want 2", len(items))
	}
	if items[0].ID != second.ID || items[1].ID != first.ID {
		t.Fatalf("conversations should be most recent first")
	}
	if _, err := a.ListUserConversations(99); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

type recordingEvents struct {
	keys []string
}

func (r *recordingEvents) PublishJSON(_ context.Context, key string, _ any) error {
	r.keys = append(r.keys, key)
	return nil
}

func TestCreatedRecordEvents(t *testing.T) {
	mem := store.NewMemoryStore()
	rec := &recordingEvents{}
	a, err := New(Config{Store: mem, Events: rec})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	owner, _ := a.CreateUser("Alice", "a@x.com", "", "")
	conv, err := a.CreateConversation("", owner.ID, "Hi", false)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	if _, err := a.CreateChatMessage(owner.ID, "follow-up", conv.ID); err != nil {
		t.Fatalf("create chat message: %v", err)
	}
	want := []string{"conversation.created", "chat.message.created"}
	if len(rec.keys) != len(want) {
		t.Fatalf("event keys = %v, want %v", rec.keys, want)
	}
	for i := range want {
		if rec.keys[i] != want[i] {
			t.Fatalf("event keys = %v, want %v", rec.keys, want)
		}
	}
}
