package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kanakk365/ysntest-sub001/internal/api/validation"
	"github.com/kanakk365/ysntest-sub001/internal/backend"
)

// Authenticator exchanges credentials for a user and bearer token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResult, error)
}

// SignOuter is implemented by authenticators that can invalidate a token remotely.
type SignOuter interface {
	Logout(ctx context.Context, token string) error
}

// Store is the single writer of the Session. Readers take copies through
// Snapshot or Subscribe and never mutate it.
type Store struct {
	auth      Authenticator
	persister Persister

	mu          sync.Mutex
	state       Session
	lastErr     error
	seq         uint64 // issuance order of login/logout/reset
	cancelLogin context.CancelFunc
	subs        map[chan Session]struct{}
}

// NewStore creates a Store. persister may be nil, in which case nothing is
// persisted and Hydrate resolves to an empty session.
func NewStore(auth Authenticator, persister Persister) *Store {
	return &Store{
		auth:      auth,
		persister: persister,
		subs:      make(map[chan Session]struct{}),
	}
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// LastError returns the typed error behind Session.Error, if any.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Login validates the credentials, calls the authenticator and applies the
// result. Only the most recently issued login (or logout) may change the
// session: a response to a superseded login is discarded. Errors never escape;
// they are recorded in Session.Error and the call returns false.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	if errs := validation.ValidateCredentials(email, password); len(errs) > 0 {
		verr := &ValidationError{Fields: errs}

		s.mu.Lock()
		s.state.Error = verr.Error()
		s.lastErr = verr
		s.publishLocked()
		s.mu.Unlock()

		return false
	}

	s.mu.Lock()
	if s.cancelLogin != nil {
		s.cancelLogin()
	}
	s.seq++
	seq := s.seq
	loginCtx, cancel := context.WithCancel(ctx)
	s.cancelLogin = cancel
	s.state.Loading = true
	s.state.Error = ""
	s.lastErr = nil
	s.publishLocked()
	s.mu.Unlock()

	res, err := s.auth.Login(loginCtx, email, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()

	if seq != s.seq {
		slog.Debug("discarding superseded login response", "email", email)
		return false
	}
	s.cancelLogin = nil

	if err != nil {
		slog.Info("login failed", "email", email, "error", err)
		s.replaceLocked(Session{Error: backend.Message(err)})
		s.lastErr = err
		s.clearPersistedLocked(ctx)
		s.publishLocked()
		return false
	}

	s.replaceLocked(Session{
		User: &User{
			ID:    res.User.ID,
			Name:  res.User.Name,
			Email: res.User.Email,
			Role:  RoleCode(res.User.UserType),
		},
		Token:         res.Token,
		Authenticated: true,
	})
	s.lastErr = nil
	s.persistLocked(ctx)
	s.publishLocked()

	slog.Info("login succeeded", "userId", res.User.ID, "role", RoleCode(res.User.UserType).String())
	return true
}

// Logout clears the session and its persisted copy, then asks the
// authenticator to invalidate the token if it supports that. Safe to call
// with no session.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.state.Token
	s.resetLocked(ctx)
	s.mu.Unlock()

	if token == "" {
		return
	}
	if so, ok := s.auth.(SignOuter); ok {
		if err := so.Logout(ctx, token); err != nil {
			slog.Warn("remote sign-out failed", "error", err)
		}
	}
}

// Reset discards the session and its persisted copy without contacting the
// backend. Used for explicit "fresh state" requests.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(ctx)
}

// Hydrate restores the session from the persister. Hydrated is set to true
// when this returns, whatever happened: a missing, unreadable or malformed
// blob resolves to an empty session. A login or logout issued while Hydrate
// was reading wins over the restored data.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	if s.state.Hydrated {
		s.mu.Unlock()
		return
	}
	seq := s.seq
	s.mu.Unlock()

	restored, malformed := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Hydrated {
		return
	}
	if malformed && seq == s.seq {
		s.clearPersistedLocked(ctx)
	}
	if seq == s.seq && restored.Authenticated {
		s.replaceLocked(restored)
		slog.Debug("session restored", "userId", restored.UserID())
	}
	s.state.Hydrated = true
	s.publishLocked()
}

// ClearError resets the last error message without touching anything else.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Error == "" && s.lastErr == nil {
		return
	}
	s.state.Error = ""
	s.lastErr = nil
	s.publishLocked()
}

// Subscribe returns a channel that receives the latest session after every
// change. Slow readers only ever see the newest value. The returned function
// unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Session, func()) {
	ch := make(chan Session, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	ch <- s.state.clone()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			close(ch)
			s.mu.Unlock()
		})
	}
}

func (s *Store) load(ctx context.Context) (restored Session, malformed bool) {
	if s.persister == nil {
		return Session{}, false
	}

	data, err := s.persister.Load(ctx)
	if err != nil {
		slog.Warn("reading persisted session", "error", err)
		return Session{}, false
	}
	if data == nil {
		return Session{}, false
	}

	restored, err = Decode(data)
	if err != nil {
		slog.Warn("discarding persisted session", "error", err)
		return Session{}, errors.Is(err, ErrMalformedState)
	}
	return restored, false
}

// resetLocked supersedes any in-flight login and clears everything. s.mu
// must be held.
func (s *Store) resetLocked(ctx context.Context) {
	if s.cancelLogin != nil {
		s.cancelLogin()
		s.cancelLogin = nil
	}
	s.seq++
	s.replaceLocked(Session{})
	s.lastErr = nil
	s.clearPersistedLocked(ctx)
	s.publishLocked()
}

// replaceLocked swaps in next as a new identity, keeping the hydration flag
// and bumping the generation. s.mu must be held.
func (s *Store) replaceLocked(next Session) {
	next.Hydrated = s.state.Hydrated
	next.Loading = false
	next.Generation = s.state.Generation + 1
	s.state = next
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.persister == nil {
		return
	}
	data, err := Encode(s.state)
	if err != nil {
		slog.Error("encoding session for persistence", "error", err)
		return
	}
	if err := s.persister.Save(ctx, data); err != nil {
		slog.Error("persisting session", "error", err)
	}
}

func (s *Store) clearPersistedLocked(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Clear(ctx); err != nil {
		slog.Error("clearing persisted session", "error", err)
	}
}

func (s *Store) publishLocked() {
	snap := s.state.clone()
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
