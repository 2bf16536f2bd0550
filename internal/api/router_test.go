package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	specpkg "github.com/kanakk365/ysntest-sub001/api"
	"github.com/kanakk365/ysntest-sub001/internal/api"
	"github.com/kanakk365/ysntest-sub001/internal/backend"
)

// openAPIDoc is the minimal structure needed to extract paths from the OpenAPI document.
type openAPIDoc struct {
	Paths map[string]map[string]interface{} `json:"paths"`
}

var httpMethods = map[string]bool{
	"GET": true, "PUT": true, "POST": true, "DELETE": true,
	"OPTIONS": true, "HEAD": true, "PATCH": true, "TRACE": true,
}

// --- Stub backend ---

type stubBackend struct{}

func (stubBackend) Login(_ context.Context, email, _ string) (*backend.LoginResult, error) {
	if email != "coach@ysn.com" {
		return nil, &backend.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	return &backend.LoginResult{User: backend.User{ID: 2, Email: email, UserType: 3}, Token: "coach-token"}, nil
}

func (stubBackend) CurrentUser(_ context.Context, token string) (*backend.User, error) {
	switch token {
	case "coach-token":
		return &backend.User{ID: 2, Email: "coach@ysn.com", UserType: 3}, nil
	case "admin-token":
		return &backend.User{ID: 1, Email: "admin@ysn.com", UserType: 9}, nil
	}
	return nil, &backend.APIError{StatusCode: http.StatusUnauthorized}
}

func (stubBackend) Logout(context.Context, string) error { return nil }

func (stubBackend) Organization(_ context.Context, slug string) (*backend.Organization, error) {
	return &backend.Organization{ID: 1, Slug: slug}, nil
}

func (stubBackend) Team(_ context.Context, slug string) (*backend.Team, error) {
	return &backend.Team{ID: 1, Slug: slug}, nil
}

func (stubBackend) ListEvents(context.Context, string) ([]backend.Event, error) {
	return []backend.Event{}, nil
}

func (stubBackend) GetEvent(_ context.Context, _ string, id int64) (*backend.Event, error) {
	return &backend.Event{ID: id}, nil
}

func (stubBackend) CreateEvent(_ context.Context, _ string, in backend.EventInput) (*backend.Event, error) {
	return &backend.Event{ID: 1, Title: in.Title, StartsAt: in.StartsAt}, nil
}

func (stubBackend) UpdateEvent(_ context.Context, _ string, id int64, in backend.EventInput) (*backend.Event, error) {
	return &backend.Event{ID: id, Title: in.Title, StartsAt: in.StartsAt}, nil
}

func (stubBackend) DeleteEvent(context.Context, string, int64) error { return nil }

func (stubBackend) Ping(context.Context) error { return nil }

type stubMinter struct{}

func (stubMinter) Mint(uid string, _ map[string]any) (string, error) { return "custom-" + uid, nil }

func newTestRouter() *chi.Mux {
	return api.NewRouter(api.RouterDeps{
		Backend:     stubBackend{},
		Minter:      stubMinter{},
		Version:     "test",
		OpenAPISpec: specpkg.OpenAPISpec,
	})
}

// --- OpenAPI coverage ---

func TestOpenAPI_RoutesCoverAllPaths(t *testing.T) {
	t.Parallel()

	docJSON, err := yaml.YAMLToJSON(specpkg.OpenAPISpec)
	require.NoError(t, err, "embedded OpenAPI document must convert to JSON")

	var doc openAPIDoc
	err = yaml.Unmarshal(docJSON, &doc)
	require.NoError(t, err, "OpenAPI JSON must unmarshal")

	docRoutes := extractDocRoutes(t, doc)
	require.NotEmpty(t, docRoutes, "OpenAPI document should define at least one route")

	chiRoutes := extractChiRoutes(t, newTestRouter())
	require.NotEmpty(t, chiRoutes, "Chi router should have at least one route")

	for _, sr := range docRoutes {
		t.Run(fmt.Sprintf("openapi_%s_%s_has_Chi_route", sr.method, sr.path), func(t *testing.T) {
			assert.Contains(t, chiRoutes, sr, "OpenAPI route %s %s not found in Chi router", sr.method, sr.path)
		})
	}

	for _, cr := range chiRoutes {
		t.Run(fmt.Sprintf("Chi_%s_%s_has_openapi_path", cr.method, cr.path), func(t *testing.T) {
			assert.Contains(t, docRoutes, cr, "Chi route %s %s not found in OpenAPI document", cr.method, cr.path)
		})
	}
}

type route struct {
	method string
	path   string
}

func extractDocRoutes(t *testing.T, doc openAPIDoc) []route {
	t.Helper()
	var routes []route
	for path, methods := range doc.Paths {
		for method := range methods {
			// Path-level keys such as "parameters" are not operations.
			if !httpMethods[strings.ToUpper(method)] {
				continue
			}
			routes = append(routes, route{
				method: strings.ToUpper(method),
				path:   path,
			})
		}
	}
	sortRoutes(routes)
	return routes
}

func extractChiRoutes(t *testing.T, r *chi.Mux) []route {
	t.Helper()
	var routes []route
	walkFunc := func(method, routePath string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		// Chi subroutes produce trailing slashes (e.g. /api/events/).
		normalized := strings.TrimRight(routePath, "/")
		if normalized == "" {
			normalized = "/"
		}
		routes = append(routes, route{method: method, path: normalized})
		return nil
	}
	err := chi.Walk(r, walkFunc)
	require.NoError(t, err, "chi.Walk should not error")

	sortRoutes(routes)
	return routes
}

func sortRoutes(routes []route) {
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].path == routes[j].path {
			return routes[i].method < routes[j].method
		}
		return routes[i].path < routes[j].path
	})
}

// --- Routing ---

func serve(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_EventsRequireCoach(t *testing.T) {
	t.Parallel()
	r := newTestRouter()

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/events", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/events", "coach-token", "").Code)

	w := serve(r, http.MethodGet, "/api/events", "admin-token", "")
	require.Equal(t, http.StatusForbidden, w.Code)

	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	details := env["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Equal(t, "/admin", details["redirect"])
}

func TestRouter_LoginThenUser(t *testing.T) {
	t.Parallel()
	r := newTestRouter()

	w := serve(r, http.MethodPost, "/api/auth/login", "", `{"email":"coach@ysn.com","password":"password"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(t, "coach-token", env.Data.Token)

	w = serve(r, http.MethodGet, "/api/auth/user", env.Data.Token, "")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodPost, "/api/auth/logout", env.Data.Token, "").Code)
}

func TestRouter_ChatTokenRoute(t *testing.T) {
	t.Parallel()
	r := newTestRouter()

	w := serve(r, http.MethodPost, "/api/chat/token", "", `{"userId":2,"name":"Coach","email":"coach@ysn.com","token":"coach-token"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "custom-app_2")
}

func TestRouter_ChatTokenDisabledWithoutMinter(t *testing.T) {
	t.Parallel()
	r := api.NewRouter(api.RouterDeps{Backend: stubBackend{}})

	w := serve(r, http.MethodPost, "/api/chat/token", "", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_HealthWithoutBackend(t *testing.T) {
	t.Parallel()
	r := api.NewRouter(api.RouterDeps{Version: "test"})

	w := serve(r, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/events", "coach-token", "").Code)
}
