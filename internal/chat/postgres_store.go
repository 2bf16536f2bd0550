package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the chat tables. It is safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS chat_users (
    id VARCHAR(64) PRIMARY KEY,
    local_id BIGINT NOT NULL,
    name VARCHAR(255) NOT NULL DEFAULT '',
    email VARCHAR(255) NOT NULL DEFAULT '',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS chat_conversations (
    key VARCHAR(140) PRIMARY KEY,
    members TEXT[] NOT NULL DEFAULT '{}',
    last_message TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_chat_conversations_members ON chat_conversations USING GIN (members);
CREATE TABLE IF NOT EXISTS chat_messages (
    id UUID PRIMARY KEY,
    conversation_key VARCHAR(140) NOT NULL REFERENCES chat_conversations (key) ON DELETE CASCADE,
    sender_id VARCHAR(64) NOT NULL,
    body TEXT NOT NULL,
    sent_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_conversation ON chat_messages (conversation_key, sent_at);
`

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the chat tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("creating chat schema: %w", err)
	}
	return nil
}

// UpsertUser inserts or refreshes a user document.
func (s *PostgresStore) UpsertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO chat_users (id, local_id, name, email)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET local_id = EXCLUDED.local_id, name = EXCLUDED.name, email = EXCLUDED.email, updated_at = NOW()
		RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query, u.ID, u.LocalID, u.Name, u.Email).Scan(&u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting chat user: %w", err)
	}
	return nil
}

// AddMembers creates the conversation if needed and merges members into it.
func (s *PostgresStore) AddMembers(ctx context.Context, key string, members ...string) (*Conversation, error) {
	query := `
		INSERT INTO chat_conversations (key, members)
		VALUES ($1, ARRAY(SELECT DISTINCT unnest($2::text[]) ORDER BY 1))
		ON CONFLICT (key) DO UPDATE
		SET members = ARRAY(
		        SELECT DISTINCT unnest(chat_conversations.members || EXCLUDED.members) ORDER BY 1
		    ),
		    updated_at = NOW()
		RETURNING key, members, last_message, updated_at`

	var c Conversation
	err := s.pool.QueryRow(ctx, query, key, members).Scan(&c.Key, &c.Members, &c.LastMessage, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("adding conversation members: %w", err)
	}
	return &c, nil
}

// GetConversation retrieves a conversation by key.
func (s *PostgresStore) GetConversation(ctx context.Context, key string) (*Conversation, error) {
	query := `
		SELECT key, members, last_message, updated_at
		FROM chat_conversations
		WHERE key = $1`

	var c Conversation
	err := s.pool.QueryRow(ctx, query, key).Scan(&c.Key, &c.Members, &c.LastMessage, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("querying conversation: %w", err)
	}
	return &c, nil
}

// ListConversations returns the member's conversations, most recent first.
func (s *PostgresStore) ListConversations(ctx context.Context, memberID string) ([]Conversation, error) {
	query := `
		SELECT key, members, last_message, updated_at
		FROM chat_conversations
		WHERE members @> ARRAY[$1::text]
		ORDER BY updated_at DESC, key ASC`

	rows, err := s.pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	convs := []Conversation{}
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.Key, &c.Members, &c.LastMessage, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning conversation row: %w", err)
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversation rows: %w", err)
	}

	return convs, nil
}

// AppendMessage inserts m and updates the conversation in one transaction.
func (s *PostgresStore) AppendMessage(ctx context.Context, m *Message) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var isMember bool
	err = tx.QueryRow(ctx,
		`SELECT $2::text = ANY(members) FROM chat_conversations WHERE key = $1 FOR UPDATE`,
		m.ConversationKey, m.SenderID,
	).Scan(&isMember)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrConversationNotFound
		}
		return fmt.Errorf("locking conversation: %w", err)
	}
	if !isMember {
		return ErrNotMember
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO chat_messages (id, conversation_key, sender_id, body, sent_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.ConversationKey, m.SenderID, m.Body, m.SentAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrConversationNotFound
		}
		return fmt.Errorf("inserting message: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE chat_conversations
		SET last_message = $2, updated_at = $3
		WHERE key = $1`,
		m.ConversationKey, m.Body, m.SentAt,
	)
	if err != nil {
		return fmt.Errorf("updating conversation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing message: %w", err)
	}
	return nil
}

// ListMessages returns up to limit of the newest messages, oldest first.
func (s *PostgresStore) ListMessages(ctx context.Context, key string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, conversation_key, sender_id, body, sent_at
		FROM (
		    SELECT id, conversation_key, sender_id, body, sent_at
		    FROM chat_messages
		    WHERE conversation_key = $1
		    ORDER BY sent_at DESC
		    LIMIT $2
		) newest
		ORDER BY sent_at ASC`

	rows, err := s.pool.Query(ctx, query, key, limit)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationKey, &m.SenderID, &m.Body, &m.SentAt); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}

	return msgs, nil
}
