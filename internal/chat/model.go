// Package chat is the messaging feature built on the chat system's
// document store: user documents, conversations keyed by the derived
// conversation key, and their messages.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// User is the chat system's document for a local user.
type User struct {
	ID        string    `json:"id"`
	LocalID   int64     `json:"localId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Conversation is a two-member conversation document.
type Conversation struct {
	Key         string    `json:"key"`
	Members     []string  `json:"members"`
	LastMessage string    `json:"lastMessage"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasMember reports whether id belongs to the conversation.
func (c *Conversation) HasMember(id string) bool {
	for _, m := range c.Members {
		if m == id {
			return true
		}
	}
	return false
}

// Message is one message in a conversation.
type Message struct {
	ID              uuid.UUID `json:"id"`
	ConversationKey string    `json:"conversationKey"`
	SenderID        string    `json:"senderId"`
	Body            string    `json:"body"`
	SentAt          time.Time `json:"sentAt"`
}
