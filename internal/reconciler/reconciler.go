package reconciler

import (
	"context"
	"log/slog"
	"time"

	"github.com/kanakk365/ysntest-sub001/internal/session"
)

// SessionSource is the read side of the session store.
type SessionSource interface {
	Snapshot() session.Session
	Subscribe() (<-chan session.Session, func())
}

// Target is the chat identity bridge.
type Target interface {
	Reconcile(ctx context.Context, s session.Session) error
	Ready() bool
}

// Reconciler keeps the chat identity in step with the local session. It
// reconciles on every identity change and retries on a ticker while the
// bridge is not ready.
type Reconciler struct {
	sessions SessionSource
	bridge   Target
	interval time.Duration
}

// New creates a new Reconciler.
func New(sessions SessionSource, bridge Target, interval time.Duration) *Reconciler {
	return &Reconciler{
		sessions: sessions,
		bridge:   bridge,
		interval: interval,
	}
}

// Start begins the reconciliation loop. It blocks until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	slog.Info("reconciler started", "interval", r.interval.String())
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	updates, unsubscribe := r.sessions.Subscribe()
	defer unsubscribe()

	var (
		latest  session.Session
		applied uint64
		seen    bool
	)

	for {
		select {
		case <-ctx.Done():
			slog.Info("reconciler stopped")
			return
		case s, ok := <-updates:
			if !ok {
				slog.Info("reconciler stopped", "reason", "session subscription closed")
				return
			}
			latest = s
			if !s.Hydrated || s.Loading {
				continue
			}
			if seen && s.Generation == applied {
				continue
			}
			seen = true
			applied = s.Generation
			r.reconcile(ctx, s)
		case <-ticker.C:
			if seen && latest.Authenticated && !r.bridge.Ready() {
				r.reconcile(ctx, latest)
			}
		}
	}
}

// Once reconciles the current session a single time and returns the result.
func (r *Reconciler) Once(ctx context.Context) error {
	return r.bridge.Reconcile(ctx, r.sessions.Snapshot())
}

func (r *Reconciler) reconcile(ctx context.Context, s session.Session) {
	if err := r.bridge.Reconcile(ctx, s); err != nil {
		slog.Warn("reconciler: chat identity not established",
			"userId", s.UserID(),
			"generation", s.Generation,
			"error", err,
		)
		return
	}
	slog.Debug("reconciler: chat identity in sync", "userId", s.UserID(), "generation", s.Generation)
}
