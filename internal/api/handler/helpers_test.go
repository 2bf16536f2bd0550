package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/kanakk365/ysntest-sub001/internal/api/middleware"
	"github.com/kanakk365/ysntest-sub001/internal/backend"
)

// --- Mock Backend ---

type mockBackend struct {
	loginFn       func(ctx context.Context, email, password string) (*backend.LoginResult, error)
	currentUserFn func(ctx context.Context, token string) (*backend.User, error)
	logoutFn      func(ctx context.Context, token string) error
	orgFn         func(ctx context.Context, slug string) (*backend.Organization, error)
	teamFn        func(ctx context.Context, slug string) (*backend.Team, error)
	listEventsFn  func(ctx context.Context, token string) ([]backend.Event, error)
	getEventFn    func(ctx context.Context, token string, id int64) (*backend.Event, error)
	createEventFn func(ctx context.Context, token string, in backend.EventInput) (*backend.Event, error)
	updateEventFn func(ctx context.Context, token string, id int64, in backend.EventInput) (*backend.Event, error)
	deleteEventFn func(ctx context.Context, token string, id int64) error
	pingFn        func(ctx context.Context) error
}

func (m *mockBackend) Login(ctx context.Context, email, password string) (*backend.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, &backend.APIError{StatusCode: http.StatusUnauthorized}
}

func (m *mockBackend) CurrentUser(ctx context.Context, token string) (*backend.User, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, token)
	}
	return nil, &backend.APIError{StatusCode: http.StatusUnauthorized}
}

func (m *mockBackend) Logout(ctx context.Context, token string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return nil
}

func (m *mockBackend) Organization(ctx context.Context, slug string) (*backend.Organization, error) {
	if m.orgFn != nil {
		return m.orgFn(ctx, slug)
	}
	return nil, &backend.APIError{StatusCode: http.StatusNotFound}
}

func (m *mockBackend) Team(ctx context.Context, slug string) (*backend.Team, error) {
	if m.teamFn != nil {
		return m.teamFn(ctx, slug)
	}
	return nil, &backend.APIError{StatusCode: http.StatusNotFound}
}

func (m *mockBackend) ListEvents(ctx context.Context, token string) ([]backend.Event, error) {
	if m.listEventsFn != nil {
		return m.listEventsFn(ctx, token)
	}
	return []backend.Event{}, nil
}

func (m *mockBackend) GetEvent(ctx context.Context, token string, id int64) (*backend.Event, error) {
	if m.getEventFn != nil {
		return m.getEventFn(ctx, token, id)
	}
	return nil, &backend.APIError{StatusCode: http.StatusNotFound}
}

func (m *mockBackend) CreateEvent(ctx context.Context, token string, in backend.EventInput) (*backend.Event, error) {
	if m.createEventFn != nil {
		return m.createEventFn(ctx, token, in)
	}
	return &backend.Event{ID: 1, Title: in.Title, StartsAt: in.StartsAt, EndsAt: in.EndsAt}, nil
}

func (m *mockBackend) UpdateEvent(ctx context.Context, token string, id int64, in backend.EventInput) (*backend.Event, error) {
	if m.updateEventFn != nil {
		return m.updateEventFn(ctx, token, id, in)
	}
	return &backend.Event{ID: id, Title: in.Title, StartsAt: in.StartsAt}, nil
}

func (m *mockBackend) DeleteEvent(ctx context.Context, token string, id int64) error {
	if m.deleteEventFn != nil {
		return m.deleteEventFn(ctx, token, id)
	}
	return nil
}

func (m *mockBackend) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

// --- Helpers ---

func makeChiRequest(method, path string, body []byte, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req, w
}

func withIdentity(req *http.Request, user *backend.User, token string) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), &middleware.Identity{User: user, Token: token}))
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err, "failed to parse response body")
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := parseEnvelope(t, w)
	errObj, ok := env["error"].(map[string]interface{})
	require.True(t, ok, "expected error object in envelope")
	return errObj["code"].(string)
}

func coach() *backend.User {
	return &backend.User{ID: 2, Name: "Coach", Email: "coach@ysn.com", UserType: 3}
}

var eventStart = time.Date(2026, 5, 1, 17, 0, 0, 0, time.UTC)
