package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kanakk365/ysntest-sub001/internal/session"
)

// ExchangeRequest is the body of the token-exchange route.
type ExchangeRequest struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// TokenExchanger trades a local bearer token for a chat custom token.
type TokenExchanger interface {
	Exchange(ctx context.Context, req ExchangeRequest) (string, error)
}

// ForeignAuth is the chat system's sign-in surface.
type ForeignAuth interface {
	// CurrentUID returns the signed-in foreign id, or "" when signed out.
	CurrentUID() string
	SignInWithCustomToken(ctx context.Context, customToken string) (string, error)
	SignOut(ctx context.Context) error
}

// Status is a snapshot of the bridge.
type Status struct {
	ForeignID string
	Ready     bool
	Err       error
}

// Bridge keeps the chat identity aligned with the local session. Reconcile
// runs its steps one at a time and never interleaves two reconciliations.
type Bridge struct {
	exchanger TokenExchanger
	foreign   ForeignAuth

	reconcileMu sync.Mutex

	mu     sync.RWMutex
	status Status
}

// NewBridge creates a Bridge.
func NewBridge(exchanger TokenExchanger, foreign ForeignAuth) *Bridge {
	return &Bridge{exchanger: exchanger, foreign: foreign}
}

// Reconcile brings the chat identity in line with s. For a logged-out
// session it signs out of the chat system. For a logged-in one it signs out
// any other identity, exchanges the token, signs in and checks the result.
// A mismatch after sign-in forces one more sign-out and retry.
func (b *Bridge) Reconcile(ctx context.Context, s session.Session) error {
	b.reconcileMu.Lock()
	defer b.reconcileMu.Unlock()

	if !s.Authenticated {
		b.setStatus(Status{})
		if b.foreign.CurrentUID() == "" {
			return nil
		}
		if err := b.foreign.SignOut(ctx); err != nil {
			slog.Warn("chat sign-out failed", "error", err)
			return fmt.Errorf("signing out of chat: %w", err)
		}
		slog.Info("signed out of chat")
		return nil
	}

	want, err := DeriveForeignID(s.UserID())
	if err != nil {
		b.setStatus(Status{Err: err})
		return err
	}

	if b.foreign.CurrentUID() == want {
		b.setStatus(Status{ForeignID: want, Ready: true})
		return nil
	}

	b.setStatus(Status{ForeignID: want})

	err = b.establish(ctx, s, want)
	if errors.Is(err, ErrIdentityMismatch) {
		slog.Warn("chat identity mismatch, retrying", "expected", want, "error", err)
		err = b.establish(ctx, s, want)
	}
	if err != nil {
		if uid := b.foreign.CurrentUID(); uid != "" && uid != want {
			if soErr := b.foreign.SignOut(ctx); soErr != nil {
				slog.Warn("chat sign-out after failed reconcile", "error", soErr)
			}
		}
		slog.Error("chat bridge not ready", "foreignId", want, "error", err)
		b.setStatus(Status{ForeignID: want, Err: err})
		return err
	}

	slog.Info("chat identity established", "foreignId", want)
	b.setStatus(Status{ForeignID: want, Ready: true})
	return nil
}

func (b *Bridge) establish(ctx context.Context, s session.Session, want string) error {
	if uid := b.foreign.CurrentUID(); uid != "" {
		if err := b.foreign.SignOut(ctx); err != nil {
			return fmt.Errorf("signing out of chat as %s: %w", uid, err)
		}
	}

	req := ExchangeRequest{UserID: s.UserID(), Token: s.Token}
	if s.User != nil {
		req.Name = s.User.Name
		req.Email = s.User.Email
	}
	customToken, err := b.exchanger.Exchange(ctx, req)
	if err != nil {
		return fmt.Errorf("exchanging token: %w", err)
	}

	uid, err := b.foreign.SignInWithCustomToken(ctx, customToken)
	if err != nil {
		return fmt.Errorf("signing in to chat: %w", err)
	}
	if uid != want {
		return fmt.Errorf("%w: signed in as %q, expected %q", ErrIdentityMismatch, uid, want)
	}
	return nil
}

// Status returns the bridge's current status.
func (b *Bridge) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// Ready reports whether a chat identity is established.
func (b *Bridge) Ready() bool {
	return b.Status().Ready
}

// RequireReady returns the foreign id for localUserID if the chat system is
// signed in as exactly that identity, and ErrNotReady otherwise.
func (b *Bridge) RequireReady(localUserID int64) (string, error) {
	want, err := DeriveForeignID(localUserID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotReady, err)
	}

	st := b.Status()
	if !st.Ready || st.ForeignID != want || b.foreign.CurrentUID() != want {
		if st.Err != nil {
			return "", fmt.Errorf("%w: %w", ErrNotReady, st.Err)
		}
		return "", ErrNotReady
	}
	return want, nil
}

func (b *Bridge) setStatus(st Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = st
}
