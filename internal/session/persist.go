package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Persister stores the serialized session blob. Load returns (nil, nil) when
// nothing is stored.
type Persister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// persistedVersion is bumped when the blob layout changes; older blobs are
// treated as malformed and discarded.
const persistedVersion = 1

type persistedSession struct {
	Version       int    `json:"v"`
	User          *User  `json:"user"`
	Token         string `json:"token"`
	Authenticated bool   `json:"authenticated"`
}

// Encode serializes the durable part of s.
func Encode(s Session) ([]byte, error) {
	data, err := json.Marshal(persistedSession{
		Version:       persistedVersion,
		User:          s.User,
		Token:         s.Token,
		Authenticated: s.Authenticated,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	return data, nil
}

// Decode restores a session from data. A blob describing a logged-out session
// yields an empty Session. Blobs that break the session invariants return
// ErrMalformedState.
func Decode(data []byte) (Session, error) {
	var p persistedSession
	if err := json.Unmarshal(data, &p); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if p.Version != persistedVersion {
		return Session{}, fmt.Errorf("%w: unsupported version %d", ErrMalformedState, p.Version)
	}
	if !p.Authenticated {
		return Session{}, nil
	}
	if p.User == nil || p.User.ID <= 0 || p.Token == "" {
		return Session{}, fmt.Errorf("%w: authenticated session without user or token", ErrMalformedState)
	}

	return Session{
		User:          p.User,
		Token:         p.Token,
		Authenticated: true,
	}, nil
}

// MemoryPersister keeps the blob in memory. Useful in tests and for clients
// that run without a state file.
type MemoryPersister struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryPersister creates an empty MemoryPersister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (m *MemoryPersister) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryPersister) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *MemoryPersister) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}
