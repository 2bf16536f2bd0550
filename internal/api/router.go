package api

import (
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/kanakk365/ysntest-sub001/internal/api/handler"
	"github.com/kanakk365/ysntest-sub001/internal/api/middleware"
	"github.com/kanakk365/ysntest-sub001/internal/role"
)

// Backend is everything the server needs from the platform REST API.
type Backend interface {
	handler.AuthBackend
	handler.DirectoryBackend
	handler.EventsBackend
	handler.BackendPinger
}

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Backend     Backend
	Minter      handler.TokenMinter
	Roles       *role.Router
	Version     string
	OpenAPISpec []byte
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	var pinger handler.BackendPinger
	if deps.Backend != nil {
		pinger = deps.Backend
	}
	healthHandler := handler.NewHealthHandler(pinger, deps.Version, deps.Minter != nil)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	if deps.Backend == nil {
		return r
	}

	roles := deps.Roles
	if roles == nil {
		roles = role.DefaultRouter()
	}
	requireAuth := middleware.Auth(deps.Backend)

	authHandler := handler.NewAuthHandler(deps.Backend)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.With(requireAuth).Get("/user", authHandler.User)
		r.With(requireAuth).Post("/logout", authHandler.Logout)
	})

	if deps.Minter != nil {
		tokenHandler := handler.NewTokenHandler(deps.Backend, deps.Minter)
		r.Post("/api/chat/token", tokenHandler.Exchange)
	}

	dirHandler := handler.NewDirectoryHandler(deps.Backend)
	r.Get("/api/organizations/{slug}", dirHandler.GetOrganization)
	r.Get("/api/teams/{slug}", dirHandler.GetTeam)

	eventsHandler := handler.NewEventsHandler(deps.Backend)
	r.Route("/api/events", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.RequireArea(roles, role.CoachArea))
		r.Get("/", eventsHandler.List)
		r.Post("/", eventsHandler.Create)
		r.Get("/{id}", eventsHandler.Get)
		r.Put("/{id}", eventsHandler.Update)
		r.Delete("/{id}", eventsHandler.Delete)
	})

	return r
}
