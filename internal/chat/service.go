package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kanakk365/ysntest-sub001/internal/identity"
	"github.com/kanakk365/ysntest-sub001/internal/session"
)

// ErrEmptyMessage is returned for a blank message body.
var ErrEmptyMessage = errors.New("message is empty")

// maxBodyLen bounds a message body in bytes.
const maxBodyLen = 4000

// Readiness reports the chat identity established for a local user.
type Readiness interface {
	RequireReady(localUserID int64) (string, error)
}

// Service runs chat operations on behalf of the local session. Every call
// fails with identity.ErrNotReady until the bridge has signed in as the
// session's user.
type Service struct {
	bridge Readiness
	store  Store
	now    func() time.Time
}

// NewService creates a Service.
func NewService(bridge Readiness, store Store) *Service {
	return &Service{bridge: bridge, store: store, now: time.Now}
}

// RegisterSelf writes the session user's document.
func (s *Service) RegisterSelf(ctx context.Context, sess session.Session) (*User, error) {
	me, err := s.bridge.RequireReady(sess.UserID())
	if err != nil {
		return nil, err
	}

	u := &User{ID: me, LocalID: sess.UserID()}
	if sess.User != nil {
		u.Name = sess.User.Name
		u.Email = sess.User.Email
	}
	if err := s.store.UpsertUser(ctx, u); err != nil {
		return nil, fmt.Errorf("registering chat user: %w", err)
	}
	return u, nil
}

// OpenConversation returns the conversation with the peer, creating it and
// adding both members as needed.
func (s *Service) OpenConversation(ctx context.Context, sess session.Session, peerLocalID int64) (*Conversation, error) {
	me, key, err := s.resolve(sess, peerLocalID)
	if err != nil {
		return nil, err
	}
	peer, _ := identity.DeriveForeignID(peerLocalID)

	conv, err := s.store.AddMembers(ctx, key, me, peer)
	if err != nil {
		return nil, fmt.Errorf("opening conversation: %w", err)
	}
	return conv, nil
}

// Send posts body to the conversation with the peer.
func (s *Service) Send(ctx context.Context, sess session.Session, peerLocalID int64, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if len(body) > maxBodyLen {
		return nil, fmt.Errorf("message exceeds %d bytes", maxBodyLen)
	}

	conv, err := s.OpenConversation(ctx, sess, peerLocalID)
	if err != nil {
		return nil, err
	}
	me, _ := identity.DeriveForeignID(sess.UserID())

	msg := &Message{
		ID:              uuid.New(),
		ConversationKey: conv.Key,
		SenderID:        me,
		Body:            body,
		SentAt:          s.now().UTC(),
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}

	slog.Debug("chat message sent", "conversation", conv.Key, "messageId", msg.ID)
	return msg, nil
}

// Messages returns up to limit of the newest messages with the peer. A
// conversation that does not exist yet has no messages.
func (s *Service) Messages(ctx context.Context, sess session.Session, peerLocalID int64, limit int) ([]Message, error) {
	me, key, err := s.resolve(sess, peerLocalID)
	if err != nil {
		return nil, err
	}

	conv, err := s.store.GetConversation(ctx, key)
	if errors.Is(err, ErrConversationNotFound) {
		return []Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}
	if !conv.HasMember(me) {
		return nil, ErrNotMember
	}

	msgs, err := s.store.ListMessages(ctx, key, limit)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	return msgs, nil
}

// Conversations lists the session user's conversations.
func (s *Service) Conversations(ctx context.Context, sess session.Session) ([]Conversation, error) {
	me, err := s.bridge.RequireReady(sess.UserID())
	if err != nil {
		return nil, err
	}
	convs, err := s.store.ListConversations(ctx, me)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	return convs, nil
}

func (s *Service) resolve(sess session.Session, peerLocalID int64) (me, key string, err error) {
	me, err = s.bridge.RequireReady(sess.UserID())
	if err != nil {
		return "", "", err
	}
	peer, err := identity.DeriveForeignID(peerLocalID)
	if err != nil {
		return "", "", fmt.Errorf("peer: %w", err)
	}
	key, err = identity.DeriveConversationKey(me, peer)
	if err != nil {
		return "", "", err
	}
	return me, key, nil
}
