package store

import "chatapp/pkg/domain"

// Store defines persistence operations for users, conversations, and chats.
type Store interface {
	// users
	CreateUser(u domain.User) (domain.User, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id int64) (domain.User, bool, error)

	// conversations
	// CreateConversation persists the conversation together with its seed
	// chat; both commit atomically or neither persists.
	CreateConversation(conv domain.Conversation, seed domain.Chat) error
	GetConversation(id string) (domain.Conversation, bool, error)
	ListConversationsByUser(userID int64) ([]domain.Conversation, error)
	// SetConversationFavorite updates the matching row and refreshes
	// updatedAt. A missing id is a silent no-op, not an error.
	SetConversationFavorite(id string, favorite bool) error
	// DeleteConversation removes the conversation row only; chats belonging
	// to it are left in place.
	DeleteConversation(id string) error

	// chats
	CreateChat(c domain.Chat) (domain.Chat, error)
	ListChatsByConversation(conversationID string) ([]domain.Chat, error)
}
