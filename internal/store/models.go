package store

import (
	"time"

	"chatapp/pkg/domain"
)

// GORM models used for persistence.
type UserModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	UserName    string    `gorm:"not null"`
	Email       string    `gorm:"index;not null"`
	PhoneNumber string
	ImageURL    string
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

type ConversationModel struct {
	ID         string    `gorm:"primaryKey"`
	Title      string    `gorm:"type:text;not null"`
	IsFavorite bool      `gorm:"not null;default:false"`
	UserID     int64     `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (ConversationModel) TableName() string { return "conversations" }

type ChatModel struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	Text           string    `gorm:"not null"`
	ConversationID string    `gorm:"not null;index"`
	UserID         int64     `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (ChatModel) TableName() string { return "chats" }

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:          u.ID,
		UserName:    u.UserName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		ImageURL:    u.ImageURL,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:          m.ID,
		UserName:    m.UserName,
		Email:       m.Email,
		PhoneNumber: m.PhoneNumber,
		ImageURL:    m.ImageURL,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func conversationToModel(c domain.Conversation) ConversationModel {
	return ConversationModel{
		ID:         c.ID,
		Title:      c.Title,
		IsFavorite: c.IsFavorite,
		UserID:     c.UserID,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func conversationFromModel(m ConversationModel) domain.Conversation {
	return domain.Conversation{
		ID:         m.ID,
		Title:      m.Title,
		IsFavorite: m.IsFavorite,
		UserID:     m.UserID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func chatToModel(c domain.Chat) ChatModel {
	return ChatModel{
		ID:             c.ID,
		Text:           c.Text,
		ConversationID: c.ConversationID,
		UserID:         c.UserID,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func chatFromModel(m ChatModel) domain.Chat {
	return domain.Chat{
		ID:             m.ID,
		Text:           m.Text,
		ConversationID: m.ConversationID,
		UserID:         m.UserID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
