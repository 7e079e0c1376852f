package domain

import "time"

// BotUserID is the reserved id of the synthetic assistant account. Every
// conversation pairs its owner with this user.
const BotUserID int64 = 1

type User struct {
	ID          int64     `json:"id"`
	UserName    string    `json:"userName"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Conversation struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	IsFavorite bool      `json:"isFavorite"`
	UserID     int64     `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Chat is a stored message row. The author is recorded by id only; resolving
// it to a user snapshot happens at read time.
type Chat struct {
	ID             int64     `json:"id"`
	Text           string    `json:"text"`
	ConversationID string    `json:"conversationId"`
	UserID         int64     `json:"userId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ChatMessage is the API view of a chat entry with its author resolved.
type ChatMessage struct {
	ID             int64  `json:"id,omitempty"`
	User           User   `json:"user"`
	Text           string `json:"text"`
	ConversationID string `json:"conversationId"`
}
