package guard

import (
	"encoding/json"
	"sync"

	"traceper/internal/logger"
)

// State is the guard's view of authentication.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Session is what the guard needs from the session store.
type Session interface {
	Token() (string, bool)
	Subscribe(fn func()) (cancel func())
}

// Transition is one state change.
type Transition struct {
	From State
	To   State
}

// Guard tracks whether the protected tree is reachable. It re-reads the token
// on every session notification and moves between states when presence changes.
type Guard struct {
	session Session
	routes  Routes
	log     *logger.Logger

	mu        sync.Mutex
	state     State
	listeners map[uint64]func(Transition)
	nextID    uint64

	unsubscribe func()
}

// New starts a guard in the state implied by the current token.
func New(session Session, routes Routes, log *logger.Logger) *Guard {
	g := &Guard{
		session:   session,
		routes:    routes,
		log:       logger.OrNop(log),
		state:     stateOf(session),
		listeners: make(map[uint64]func(Transition)),
	}
	g.unsubscribe = session.Subscribe(g.reevaluate)
	return g
}

func stateOf(s Session) State {
	if _, ok := s.Token(); ok {
		return Authenticated
	}
	return Unauthenticated
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Routes returns the route table the guard resolves against.
func (g *Guard) Routes() Routes { return g.routes }

// Resolve maps path to the destination reachable right now.
func (g *Guard) Resolve(path string) Decision {
	return g.routes.Resolve(g.State(), path)
}

// OnTransition registers fn for every state change and returns its deregistration.
func (g *Guard) OnTransition(fn func(Transition)) (cancel func()) {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.listeners, id)
			g.mu.Unlock()
		})
	}
}

// Close stops following the session.
func (g *Guard) Close() {
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
}

func (g *Guard) reevaluate() {
	// Read under the lock so concurrent notifications settle on the latest token.
	g.mu.Lock()
	next := stateOf(g.session)
	prev := g.state
	if prev == next {
		g.mu.Unlock()
		return
	}
	g.state = next
	fns := make([]func(Transition), 0, len(g.listeners))
	for _, fn := range g.listeners {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	g.log.Debugw("guard_transition", "from", prev.String(), "to", next.String())
	t := Transition{From: prev, To: next}
	for _, fn := range fns {
		fn(t)
	}
}
