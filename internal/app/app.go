package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatapp/internal/store"
	"chatapp/pkg/domain"
)

// Events publishes created-record notifications. Implementations must be
// safe for concurrent use.
type Events interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Config holds dependencies for the core application.
type Config struct {
	Store  store.Store
	Events Events
}

// App is the core application service wiring storage to the chat operations.
type App struct {
	store  store.Store
	events Events
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	return &App{store: cfg.Store, events: cfg.Events}, nil
}

// CreateUser returns the user registered under email when one exists,
// ignoring the other supplied fields; otherwise it inserts a new record.
func (a *App) CreateUser(userName, email, phoneNumber, imageURL string) (domain.User, error) {
	email = strings.TrimSpace(email)
	existing, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup user by email: %w", err)
	}
	if ok {
		return existing, nil
	}
	now := time.Now().UTC()
	user, err := a.store.CreateUser(domain.User{
		UserName:    userName,
		Email:       email,
		PhoneNumber: phoneNumber,
		ImageURL:    imageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetUser returns the user with the given id.
func (a *App) GetUser(id int64) (domain.User, error) {
	user, ok, err := a.store.GetUserByID(id)
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

// ListUserConversations returns the user's conversations, most recent first.
func (a *App) ListUserConversations(userID int64) ([]domain.Conversation, error) {
	if _, ok, err := a.store.GetUserByID(userID); err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	} else if !ok {
		return nil, ErrUserNotFound
	}
	items, err := a.store.ListConversationsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return items, nil
}

// CreateConversation creates a conversation for the user together with its
// seed chat, so the message feed is never empty on first view. The seed chat
// duplicates the title and is attributed to the owner. An empty id gets a
// fresh UUID.
func (a *App) CreateConversation(id string, userID int64, title string, isFavorite bool) (domain.Conversation, error) {
	if _, ok, err := a.store.GetUserByID(userID); err != nil {
		return domain.Conversation{}, fmt.Errorf("load user: %w", err)
	} else if !ok {
		return domain.Conversation{}, ErrUserNotFound
	}
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	conv := domain.Conversation{
		ID:         id,
		Title:      title,
		IsFavorite: isFavorite,
		UserID:     userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	seed := domain.Chat{
		Text:           title,
		ConversationID: conv.ID,
		UserID:         userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := a.store.CreateConversation(conv, seed); err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	a.publish("conversation.created", conv)
	return conv, nil
}

// UpdateConversation applies the new isFavorite value to the matching row.
// A nonexistent id is a silent no-op.
func (a *App) UpdateConversation(id string, isFavorite bool) error {
	if err := a.store.SetConversationFavorite(id, isFavorite); err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	return nil
}

// DeleteConversation removes the conversation if present. Its chats are not
// cascade-deleted.
func (a *App) DeleteConversation(id string) error {
	if err := a.store.DeleteConversation(id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// CreateChatMessage inserts a chat authored by userID into the conversation
// and returns it with the full author record.
func (a *App) CreateChatMessage(userID int64, text, conversationID string) (domain.ChatMessage, error) {
	author, ok, err := a.store.GetUserByID(userID)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return domain.ChatMessage{}, ErrUserNotFound
	}
	if _, ok, err := a.store.GetConversation(conversationID); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("load conversation: %w", err)
	} else if !ok {
		return domain.ChatMessage{}, ErrConversationNotFound
	}
	now := time.Now().UTC()
	chat, err := a.store.CreateChat(domain.Chat{
		Text:           text,
		ConversationID: conversationID,
		UserID:         userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("create chat: %w", err)
	}
	a.publish("chat.message.created", chat)
	return domain.ChatMessage{
		ID:             chat.ID,
		User:           author,
		Text:           chat.Text,
		ConversationID: chat.ConversationID,
	}, nil
}

// ListChatMessages assembles the conversation's message feed in insertion
// order. A chat is attributed to the bot user iff its author id is the bot
// id; every other chat is attributed to the conversation owner, whatever its
// recorded author id.
func (a *App) ListChatMessages(conversationID string) ([]domain.ChatMessage, error) {
	conv, ok, err := a.store.GetConversation(conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if !ok {
		return nil, ErrConversationNotFound
	}
	owner, _, err := a.store.GetUserByID(conv.UserID)
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}
	bot, _, err := a.store.GetUserByID(domain.BotUserID)
	if err != nil {
		return nil, fmt.Errorf("load bot user: %w", err)
	}
	chats, err := a.store.ListChatsByConversation(conversationID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	feed := make([]domain.ChatMessage, 0, len(chats))
	for _, chat := range chats {
		author := owner
		if chat.UserID == domain.BotUserID {
			author = bot
		}
		feed = append(feed, domain.ChatMessage{
			User:           author,
			Text:           chat.Text,
			ConversationID: chat.ConversationID,
		})
	}
	return feed, nil
}

func (a *App) publish(key string, v any) {
	if a.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.events.PublishJSON(ctx, key, v); err != nil {
		slog.Warn("event publish failed", "key", key, "err", err)
	}
}
