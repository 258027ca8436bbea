package guard

import "sync"

// Navigator is one tab's router: it remembers where the tab is and, whenever
// the guard changes state, re-resolves that location and hands the result to
// render so the tab can redraw its route tree.
type Navigator struct {
	guard  *Guard
	render func(Decision)

	mu       sync.Mutex
	location string

	cancel func()
}

func NewNavigator(g *Guard, render func(Decision)) *Navigator {
	n := &Navigator{guard: g, render: render, location: "/"}
	n.cancel = g.OnTransition(n.onTransition)
	return n
}

// Navigate resolves path, moves the tab to the resulting location and returns
// the decision.
func (n *Navigator) Navigate(path string) Decision {
	d := n.guard.Resolve(path)
	n.mu.Lock()
	n.location = d.Location
	n.mu.Unlock()
	return d
}

// Location returns where the tab currently is.
func (n *Navigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// Close stops reacting to guard transitions.
func (n *Navigator) Close() {
	n.cancel()
}

func (n *Navigator) onTransition(Transition) {
	d := n.Navigate(n.Location())
	if n.render != nil {
		n.render(d)
	}
}
