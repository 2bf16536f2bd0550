package localstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.etcd.io/bbolt"
)

// SessionPersister stores the session blob under SessionKey. It satisfies
// session.Persister.
type SessionPersister struct {
	state *State
}

// SessionPersister returns the persister for the session blob, or nil for a
// nil State.
func (s *State) SessionPersister() *SessionPersister {
	if s == nil {
		return nil
	}
	return &SessionPersister{state: s}
}

// Load returns the stored blob, or nil when nothing is stored. A blob that
// cannot be unsealed (the key changed) is removed and reported as absent.
func (p *SessionPersister) Load(ctx context.Context) ([]byte, error) {
	raw, err := p.state.get(bucketSession, SessionKey)
	if err != nil || raw == nil {
		return nil, err
	}

	data, err := p.state.open(raw)
	if errors.Is(err, ErrUnsealable) {
		slog.Warn("discarding session sealed with another key")
		return nil, p.Clear(ctx)
	}
	return data, err
}

func (p *SessionPersister) Save(_ context.Context, data []byte) error {
	sealed, err := p.state.seal(data)
	if err != nil {
		return err
	}
	err = p.state.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketSession)).Put([]byte(SessionKey), sealed)
	})
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (p *SessionPersister) Clear(_ context.Context) error {
	err := p.state.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketSession)).Delete([]byte(SessionKey))
	})
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
