// Package role decides which dashboard area a session may enter.
package role

import (
	"fmt"

	"github.com/kanakk365/ysntest-sub001/internal/session"
)

// Landing is the public landing area.
const Landing = "/"

// Area is a role-gated part of the dashboard.
type Area struct {
	Name     string
	Path     string
	Required session.RoleCode
}

var (
	CoachArea      = Area{Name: "coach", Path: "/coach", Required: session.RoleCoach}
	SuperAdminArea = Area{Name: "super-admin", Path: "/admin", Required: session.RoleSuperAdmin}
)

// Decision is the outcome of evaluating a session against an area.
type Decision int

const (
	// Pending means the session is not determined yet: render a placeholder
	// and do not redirect.
	Pending Decision = iota
	Allow
	Deny
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "PENDING"
	case Allow:
		return "ALLOW"
	case Deny:
		return "DENY"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// Outcome carries the decision and, for Deny, where to go instead.
type Outcome struct {
	Decision Decision
	Redirect string
}

// Router holds the set of areas and each role's default area.
type Router struct {
	areas    map[string]Area
	defaults map[session.RoleCode]string
}

// NewRouter builds a Router. The first area registered for a role becomes
// that role's default area.
func NewRouter(areas ...Area) *Router {
	r := &Router{
		areas:    make(map[string]Area, len(areas)),
		defaults: make(map[session.RoleCode]string, len(areas)),
	}
	for _, a := range areas {
		r.areas[a.Name] = a
		if _, ok := r.defaults[a.Required]; !ok {
			r.defaults[a.Required] = a.Path
		}
	}
	return r
}

// DefaultRouter returns a Router with the coach and super-admin areas.
func DefaultRouter() *Router {
	return NewRouter(CoachArea, SuperAdminArea)
}

// Area looks up an area by name.
func (r *Router) Area(name string) (Area, bool) {
	a, ok := r.areas[name]
	return a, ok
}

// DefaultArea returns the path a role lands on, or Landing for roles with no area.
func (r *Router) DefaultArea(code session.RoleCode) string {
	if p, ok := r.defaults[code]; ok {
		return p
	}
	return Landing
}

// Evaluate decides whether s may enter area. Nothing is denied until the
// session has hydrated and no login is in flight. A recognised role on the
// wrong area is sent to its own default area rather than the landing page.
func (r *Router) Evaluate(s session.Session, area Area) Outcome {
	if !s.Hydrated || s.Loading {
		return Outcome{Decision: Pending}
	}
	if !s.Authenticated || s.User == nil {
		return Outcome{Decision: Deny, Redirect: Landing}
	}
	if s.Role() == area.Required {
		return Outcome{Decision: Allow}
	}
	return Outcome{Decision: Deny, Redirect: r.DefaultArea(s.Role())}
}
