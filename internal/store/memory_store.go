package store

import (
	"sync"
	"time"

	"chatapp/pkg/domain"
)

// MemoryStore keeps all records in-process. It backs tests and local runs
// without a database.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[int64]domain.User
	userOrder     []int64
	nextUserID    int64
	conversations map[string]domain.Conversation
	convOrder     []string
	chats         map[int64]domain.Chat
	chatOrder     []int64
	nextChatID    int64
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[int64]domain.User),
		nextUserID:    1,
		conversations: make(map[string]domain.Conversation),
		chats:         make(map[int64]domain.Chat),
		nextChatID:    1,
	}
}

// CreateUser assigns the next id and stores the user.
func (m *MemoryStore) CreateUser(u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.nextUserID
	m.nextUserID++
	m.users[u.ID] = u
	m.userOrder = append(m.userOrder, u.ID)
	return u, nil
}

// GetUserByEmail looks up a user by email in insertion order.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.userOrder {
		if u, ok := m.users[id]; ok && u.Email == email {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

// GetUserByID returns a user by id.
func (m *MemoryStore) GetUserByID(id int64) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// CreateConversation stores the conversation and its seed chat together.
func (m *MemoryStore) CreateConversation(conv domain.Conversation, seed domain.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[conv.ID] = conv
	m.convOrder = append(m.convOrder, conv.ID)
	seed.ID = m.nextChatID
	m.nextChatID++
	m.chats[seed.ID] = seed
	m.chatOrder = append(m.chatOrder, seed.ID)
	return nil
}

// GetConversation retrieves a conversation by id.
func (m *MemoryStore) GetConversation(id string) (domain.Conversation, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conversations[id]
	return c, ok, nil
}

// ListConversationsByUser returns a user's conversations, most recent first.
func (m *MemoryStore) ListConversationsByUser(userID int64) ([]domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Conversation, 0)
	for i := len(m.convOrder) - 1; i >= 0; i-- {
		if c, ok := m.conversations[m.convOrder[i]]; ok && c.UserID == userID {
			res = append(res, c)
		}
	}
	return res, nil
}

// SetConversationFavorite updates the matching row; missing id is a no-op.
func (m *MemoryStore) SetConversationFavorite(id string, favorite bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[id]
	if !ok {
		return nil
	}
	c.IsFavorite = favorite
	c.UpdatedAt = time.Now().UTC()
	m.conversations[id] = c
	return nil
}

// DeleteConversation removes the conversation only; its chats remain.
func (m *MemoryStore) DeleteConversation(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conversations, id)
	filtered := m.convOrder[:0]
	for _, item := range m.convOrder {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	m.convOrder = filtered
	return nil
}

// CreateChat assigns the next id and stores the chat.
func (m *MemoryStore) CreateChat(c domain.Chat) (domain.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextChatID
	m.nextChatID++
	m.chats[c.ID] = c
	m.chatOrder = append(m.chatOrder, c.ID)
	return c, nil
}

// ListChatsByConversation returns chats in insertion order.
func (m *MemoryStore) ListChatsByConversation(conversationID string) ([]domain.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Chat, 0)
	for _, id := range m.chatOrder {
		if c, ok := m.chats[id]; ok && c.ConversationID == conversationID {
			res = append(res, c)
		}
	}
	return res, nil
}
