package handler

import (
	"context"

	"github.com/kanakk365/ysntest-sub001/internal/backend"
)

// AuthBackend is the part of the backend the auth routes proxy to.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResult, error)
	CurrentUser(ctx context.Context, token string) (*backend.User, error)
	Logout(ctx context.Context, token string) error
}

// DirectoryBackend serves the public organization and team profiles.
type DirectoryBackend interface {
	Organization(ctx context.Context, slug string) (*backend.Organization, error)
	Team(ctx context.Context, slug string) (*backend.Team, error)
}

// EventsBackend is the backend's events CRUD.
type EventsBackend interface {
	ListEvents(ctx context.Context, token string) ([]backend.Event, error)
	GetEvent(ctx context.Context, token string, id int64) (*backend.Event, error)
	CreateEvent(ctx context.Context, token string, in backend.EventInput) (*backend.Event, error)
	UpdateEvent(ctx context.Context, token string, id int64, in backend.EventInput) (*backend.Event, error)
	DeleteEvent(ctx context.Context, token string, id int64) error
}

// BackendPinger checks that the backend is reachable.
type BackendPinger interface {
	Ping(ctx context.Context) error
}
