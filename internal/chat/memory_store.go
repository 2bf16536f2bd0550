package chat

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store in memory.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]User
	conversations map[string]*Conversation
	messages      map[string][]Message
	now           func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]User),
		conversations: make(map[string]*Conversation),
		messages:      make(map[string][]Message),
		now:           time.Now,
	}
}

func (s *MemoryStore) UpsertUser(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.UpdatedAt = s.now().UTC()
	s.users[u.ID] = *u
	return nil
}

// User returns a stored user document.
func (s *MemoryStore) User(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *MemoryStore) AddMembers(_ context.Context, key string, members ...string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[key]
	if !ok {
		c = &Conversation{Key: key}
		s.conversations[key] = c
	}
	for _, m := range members {
		if !c.HasMember(m) {
			c.Members = append(c.Members, m)
		}
	}
	sort.Strings(c.Members)
	c.UpdatedAt = s.now().UTC()

	return copyConversation(c), nil
}

func (s *MemoryStore) GetConversation(_ context.Context, key string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[key]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return copyConversation(c), nil
}

func (s *MemoryStore) ListConversations(_ context.Context, memberID string) ([]Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Conversation{}
	for _, c := range s.conversations {
		if c.HasMember(memberID) {
			out = append(out, *copyConversation(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].Key < out[j].Key
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, m *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[m.ConversationKey]
	if !ok {
		return ErrConversationNotFound
	}
	if !c.HasMember(m.SenderID) {
		return ErrNotMember
	}
	s.messages[m.ConversationKey] = append(s.messages[m.ConversationKey], *m)
	c.LastMessage = m.Body
	c.UpdatedAt = m.SentAt
	return nil
}

func (s *MemoryStore) ListMessages(_ context.Context, key string, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[key]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]Message{}, msgs...), nil
}

func copyConversation(c *Conversation) *Conversation {
	cp := *c
	cp.Members = slices.Clone(c.Members)
	return &cp
}
