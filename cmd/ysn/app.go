package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kanakk365/ysntest-sub001/internal/backend"
	"github.com/kanakk365/ysntest-sub001/internal/config"
	"github.com/kanakk365/ysntest-sub001/internal/localstate"
	"github.com/kanakk365/ysntest-sub001/internal/role"
	"github.com/kanakk365/ysntest-sub001/internal/session"
)

const lastAreaPreference = "last-area"

// app holds everything a command needs. It is built once per invocation.
type app struct {
	cfg     *config.ClientConfig
	state   *localstate.State
	backend *backend.Client
	store   *session.Store
	roles   *role.Router
}

func newApp(ctx context.Context, cfg *config.ClientConfig) (*app, error) {
	key, err := localstate.ParseKey(cfg.StateKey)
	if err != nil {
		return nil, fmt.Errorf("YSN_STATE_KEY: %w", err)
	}

	a := &app{
		cfg:     cfg,
		backend: backend.NewClient(cfg.BackendURL, backend.WithTimeout(cfg.RequestTimeout)),
		roles:   role.DefaultRouter(),
	}

	path := statePath(cfg)
	if path != "" {
		var opts []localstate.Option
		if key != nil {
			opts = append(opts, localstate.WithKey(key))
		}
		st, err := localstate.Open(path, opts...)
		if err != nil {
			slog.Warn("local state unavailable; session will not be remembered", "path", path, "error", err)
		} else {
			a.state = st
		}
	}

	if a.state != nil {
		a.store = session.NewStore(a.backend, a.state.SessionPersister())
	} else {
		a.store = session.NewStore(a.backend, nil)
	}
	a.store.Hydrate(ctx)

	return a, nil
}

func (a *app) close() {
	if a == nil {
		return
	}
	if err := a.state.Close(); err != nil {
		slog.Warn("closing local state", "error", err)
	}
}

// statePath returns where the state file lives, or "" when no location
// can be determined.
func statePath(cfg *config.ClientConfig) string {
	if cfg.StatePath != "" {
		return cfg.StatePath
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "ysn")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return ""
	}
	return filepath.Join(dir, "state.db")
}

func setupLogger(level string, w io.Writer) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

var errNotLoggedIn = errors.New("not logged in; run `ysn login` first")

func (a *app) requireSession() (session.Session, error) {
	s := a.store.Snapshot()
	if !s.Authenticated {
		return s, errNotLoggedIn
	}
	return s, nil
}
