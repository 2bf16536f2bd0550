// Package localstate keeps the client's persisted state in a single bbolt
// file: the serialized session and cached preferences.
package localstate

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	bucketSession     = "session"
	bucketPreferences = "preferences"

	// SessionKey is the fixed key the session blob is stored under.
	SessionKey = "ysn-session"

	nonceLen = 24
	keyLen   = 32
)

// ErrUnsealable is returned when a stored value cannot be opened with the
// configured key.
var ErrUnsealable = errors.New("stored value cannot be unsealed")

// ErrInvalidKey is returned by ParseKey for anything but 32 hex-encoded bytes.
var ErrInvalidKey = errors.New("state key must be 32 hex-encoded bytes")

// State is the on-disk state of one client context. A nil *State stands for
// "no persistent storage available": Reset is a no-op and SessionPersister
// returns nil.
type State struct {
	db  *bbolt.DB
	key *[keyLen]byte
}

// Option configures a State.
type Option func(*State)

// WithKey seals every stored value with secretbox under key.
func WithKey(key *[keyLen]byte) Option {
	return func(s *State) {
		s.key = key
	}
}

// ParseKey decodes a hex-encoded secretbox key. An empty string yields nil.
func ParseKey(s string) (*[keyLen]byte, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != keyLen {
		return nil, ErrInvalidKey
	}
	var key [keyLen]byte
	copy(key[:], raw)
	return &key, nil
}

// Open opens (creating if needed) the state file at path.
func Open(path string, opts ...Option) (*State, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening state file %q: %w", path, err)
	}

	s := &State{db: db}
	for _, opt := range opts {
		opt(s)
	}

	if err := db.Update(createBuckets); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing state file: %w", err)
	}

	return s, nil
}

// Close releases the state file.
func (s *State) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// Reset wipes the session and every cached preference. It is idempotent,
// never fails and is a no-op on a nil State. Storage errors are logged.
func (s *State) Reset() {
	if s == nil || s.db == nil {
		return
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{bucketSession, bucketPreferences} {
			if err := tx.DeleteBucket([]byte(name)); err != nil && !errors.Is(err, berrors.ErrBucketNotFound) {
				return fmt.Errorf("deleting bucket %s: %w", name, err)
			}
		}
		return createBuckets(tx)
	})
	if err != nil {
		slog.Error("resetting local state", "error", err)
		return
	}

	slog.Debug("local state reset", "path", s.db.Path())
}

// SetPreference stores a cached preference. It is a no-op on a nil State.
func (s *State) SetPreference(key, value string) error {
	if s == nil {
		return nil
	}
	sealed, err := s.seal([]byte(value))
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketPreferences)).Put([]byte(key), sealed)
	})
}

// Preference returns a cached preference and whether it was set.
func (s *State) Preference(key string) (string, bool, error) {
	if s == nil {
		return "", false, nil
	}
	raw, err := s.get(bucketPreferences, key)
	if err != nil || raw == nil {
		return "", false, err
	}
	value, err := s.open(raw)
	if err != nil {
		return "", false, fmt.Errorf("reading preference %s: %w", key, err)
	}
	return string(value), true, nil
}

func (s *State) get(bucket, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(bucket)).Get([]byte(key))
		if v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", bucket, key, err)
	}
	return out, nil
}

func (s *State) seal(data []byte) ([]byte, error) {
	if s.key == nil {
		return data, nil
	}
	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], data, &nonce, s.key), nil
}

func (s *State) open(data []byte) ([]byte, error) {
	if s.key == nil {
		return data, nil
	}
	if len(data) < nonceLen+secretbox.Overhead {
		return nil, ErrUnsealable
	}
	var nonce [nonceLen]byte
	copy(nonce[:], data[:nonceLen])
	out, ok := secretbox.Open(nil, data[nonceLen:], &nonce, s.key)
	if !ok {
		return nil, ErrUnsealable
	}
	return out, nil
}

func createBuckets(tx *bbolt.Tx) error {
	for _, name := range []string{bucketSession, bucketPreferences} {
		if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
			return fmt.Errorf("creating bucket %s: %w", name, err)
		}
	}
	return nil
}
