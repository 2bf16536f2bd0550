package chat

import (
	"context"
	"errors"
)

// ErrConversationNotFound is returned when no conversation exists for a key.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrNotMember is returned when the sender is not part of the conversation.
var ErrNotMember = errors.New("not a member of the conversation")

// Store is the chat document store.
type Store interface {
	UpsertUser(ctx context.Context, u *User) error
	// AddMembers creates the conversation if needed and adds members to it.
	AddMembers(ctx context.Context, key string, members ...string) (*Conversation, error)
	GetConversation(ctx context.Context, key string) (*Conversation, error)
	ListConversations(ctx context.Context, memberID string) ([]Conversation, error)
	// AppendMessage stores m and updates the conversation's last message.
	AppendMessage(ctx context.Context, m *Message) error
	// ListMessages returns up to limit of the newest messages, oldest first.
	ListMessages(ctx context.Context, key string, limit int) ([]Message, error)
}
