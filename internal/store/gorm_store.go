package store

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"chatapp/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &ConversationModel{}, &ChatModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// CreateUser inserts a user and returns it with the assigned id.
func (s *GormStore) CreateUser(u domain.User) (domain.User, error) {
	model := userToModel(u)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.User{}, err
	}
	return userFromModel(model), nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by id.
func (s *GormStore) GetUserByID(id int64) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// CreateConversation persists the conversation and its seed chat in one
// transaction.
func (s *GormStore) CreateConversation(conv domain.Conversation, seed domain.Chat) error {
	convModel := conversationToModel(conv)
	seedModel := chatToModel(seed)
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&convModel).Error; err != nil {
			return err
		}
		if err := tx.Create(&seedModel).Error; err != nil {
			return err
		}
		return nil
	})
}

// GetConversation retrieves a conversation by id.
func (s *GormStore) GetConversation(id string) (domain.Conversation, bool, error) {
	var model ConversationModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Conversation{}, false, nil
		}
		return domain.Conversation{}, false, err
	}
	return conversationFromModel(model), true, nil
}

// ListConversationsByUser returns a user's conversations, most recent first.
func (s *GormStore) ListConversationsByUser(userID int64) ([]domain.Conversation, error) {
	var models []ConversationModel
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Conversation, 0, len(models))
	for _, m := range models {
		res = append(res, conversationFromModel(m))
	}
	return res, nil
}

// SetConversationFavorite updates isFavorite and updatedAt on the matching
// row. No rows matched is not an error.
func (s *GormStore) SetConversationFavorite(id string, favorite bool) error {
	return s.db.Model(&ConversationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_favorite": favorite,
			"updated_at":  time.Now().UTC(),
		}).Error
}

// DeleteConversation removes the conversation row. Chats keep their
// conversation_id; there is no cascade.
func (s *GormStore) DeleteConversation(id string) error {
	return s.db.Delete(&ConversationModel{}, "id = ?", id).Error
}

// CreateChat inserts a chat and returns it with the assigned id.
func (s *GormStore) CreateChat(c domain.Chat) (domain.Chat, error) {
	model := chatToModel(c)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Chat{}, err
	}
	return chatFromModel(model), nil
}

// ListChatsByConversation returns a conversation's chats in insertion order.
func (s *GormStore) ListChatsByConversation(conversationID string) ([]domain.Chat, error) {
	var models []ChatModel
	if err := s.db.Where("conversation_id = ?", conversationID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Chat, 0, len(models))
	for _, m := range models {
		res = append(res, chatFromModel(m))
	}
	return res, nil
}
