package app

import "errors"

var (
	// ErrUserNotFound indicates a referenced user id or email lookup failed.
	ErrUserNotFound = errors.New("user not found")
	// ErrConversationNotFound indicates a referenced conversation is absent.
	ErrConversationNotFound = errors.New("conversation not found, start a new conversation")
)
