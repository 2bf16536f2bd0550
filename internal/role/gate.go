package role

import (
	"sync"

	"github.com/kanakk365/ysntest-sub001/internal/session"
)

// GateState is the resolution state of a Gate.
type GateState int

const (
	Unresolved GateState = iota
	ResolvedAllowed
	ResolvedDenied
)

func (s GateState) String() string {
	switch s {
	case ResolvedAllowed:
		return "RESOLVED_ALLOWED"
	case ResolvedDenied:
		return "RESOLVED_DENIED"
	}
	return "UNRESOLVED"
}

// Gate tracks access to one area across session changes. Once denied it
// stays denied until the session generation changes.
type Gate struct {
	router *Router
	area   Area

	mu         sync.Mutex
	state      GateState
	outcome    Outcome
	generation uint64
}

// NewGate creates an unresolved Gate for area.
func NewGate(router *Router, area Area) *Gate {
	return &Gate{router: router, area: area}
}

// Observe feeds the latest session to the gate and returns the current outcome.
func (g *Gate) Observe(s session.Session) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == ResolvedDenied && s.Generation == g.generation {
		return g.outcome
	}

	out := g.router.Evaluate(s, g.area)
	switch out.Decision {
	case Allow:
		g.state = ResolvedAllowed
	case Deny:
		g.state = ResolvedDenied
		g.generation = s.Generation
	default:
		g.state = Unresolved
	}
	g.outcome = out
	return out
}

// State returns the gate's resolution state.
func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
