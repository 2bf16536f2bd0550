package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanakk365/ysntest-sub001/internal/backend"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return backend.NewClient(srv.URL)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "coach@ysn.com", body["email"])
		assert.Equal(t, "password", body["password"])

		writeJSON(w, http.StatusOK, map[string]any{
			"user":  map[string]any{"id": 2, "name": "Coach Carter", "email": "coach@ysn.com", "user_type": 3},
			"token": "abc",
		})
	})

	res, err := c.Login(context.Background(), "coach@ysn.com", "password")

	require.NoError(t, err)
	assert.Equal(t, "abc", res.Token)
	assert.Equal(t, int64(2), res.User.ID)
	assert.Equal(t, 3, res.User.UserType)
}

func TestLogin_WrappedInData(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{"user": map[string]any{"id": 9, "user_type": 9}, "token": "t"},
		})
	})

	res, err := c.Login(context.Background(), "admin@ysn.com", "pw")

	require.NoError(t, err)
	assert.Equal(t, int64(9), res.User.ID)
}

func TestLogin_Unauthorized(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	})

	_, err := c.Login(context.Background(), "coach@ysn.com", "wrongpass")

	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrUnauthorized))
	assert.False(t, errors.Is(err, backend.ErrUnavailable))
	assert.Equal(t, "Invalid credentials", backend.Message(err))
}

func TestLogin_MissingToken(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": 1}})
	})

	_, err := c.Login(context.Background(), "coach@ysn.com", "password")

	assert.Error(t, err)
}

func TestLogin_MissingUserID(t *testing.T) {
	tests := []struct {
		name string
		user map[string]any
	}{
		{name: "absent", user: map[string]any{"name": "Coach", "user_type": 3}},
		{name: "zero", user: map[string]any{"id": 0, "user_type": 3}},
		{name: "negative", user: map[string]any{"id": -4, "user_type": 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"user": tt.user, "token": "abc"})
			})

			res, err := c.Login(context.Background(), "coach@ysn.com", "password")

			require.Error(t, err)
			assert.Nil(t, res)
			var apiErr *backend.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		})
	}
}

func TestLogin_ServerError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Login(context.Background(), "coach@ysn.com", "password")

	assert.True(t, errors.Is(err, backend.ErrUnavailable))
	assert.Equal(t, "The service is unavailable, please try again", backend.Message(err))
}

func TestLogin_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := backend.NewClient(url, backend.WithTimeout(time.Second))
	_, err := c.Login(context.Background(), "coach@ysn.com", "password")

	var transportErr *backend.TransportError
	assert.True(t, errors.As(err, &transportErr))
	assert.True(t, errors.Is(err, backend.ErrUnavailable))
}

// --- CurrentUser ---

func TestCurrentUser_SendsBearer(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": 2, "name": "Coach", "user_type": 3}})
	})

	u, err := c.CurrentUser(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, int64(2), u.ID)
	assert.Equal(t, "Coach", u.Name)
}

func TestCurrentUser_Unwrapped(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 5, "email": "x@ysn.com"})
	})

	u, err := c.CurrentUser(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, int64(5), u.ID)
}

func TestCurrentUser_Expired(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.CurrentUser(context.Background(), "stale")

	assert.True(t, errors.Is(err, backend.ErrUnauthorized))
	assert.Equal(t, "Invalid email or password", backend.Message(err))
}

// --- Directory ---

func TestOrganization_NotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/organizations/eagles", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Organization(context.Background(), "eagles")

	assert.True(t, errors.Is(err, backend.ErrNotFound))
}

func TestTeam_Success(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": 7, "name": "U12 Eagles", "slug": "u12-eagles"}})
	})

	team, err := c.Team(context.Background(), "u12-eagles")

	require.NoError(t, err)
	assert.Equal(t, "U12 Eagles", team.Name)
}

// --- Events ---

func TestEvents_CRUD(t *testing.T) {
	start := time.Date(2026, 4, 1, 17, 0, 0, 0, time.UTC)

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/events":
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "title": "Opener", "starts_at": start}})
		case r.Method == http.MethodPost && r.URL.Path == "/events":
			var in backend.EventInput
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			writeJSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"id": 2, "title": in.Title, "starts_at": in.StartsAt}})
		case r.Method == http.MethodPut && r.URL.Path == "/events/2":
			writeJSON(w, http.StatusOK, map[string]any{"id": 2, "title": "Renamed", "starts_at": start})
		case r.Method == http.MethodDelete && r.URL.Path == "/events/2":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	events, err := c.ListEvents(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Opener", events[0].Title)

	created, err := c.CreateEvent(ctx, "tok", backend.EventInput{Title: "Practice", StartsAt: start})
	require.NoError(t, err)
	assert.Equal(t, int64(2), created.ID)
	assert.Equal(t, "Practice", created.Title)

	updated, err := c.UpdateEvent(ctx, "tok", 2, backend.EventInput{Title: "Renamed", StartsAt: start})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	require.NoError(t, c.DeleteEvent(ctx, "tok", 2))

	_, err = c.GetEvent(ctx, "tok", 99)
	assert.True(t, errors.Is(err, backend.ErrNotFound))
}

func TestPing(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	assert.NoError(t, c.Ping(context.Background()))
}
