// Package tabs tracks the browser windows attached to the dashboard host.
package tabs

import (
	"sync"
	"time"

	"traceper/internal/guard"
	"traceper/internal/service"
	"traceper/internal/session"
	"traceper/internal/storage"
)

// Tab is one browser window: its own storage view, session handle, guard and
// navigator over the profile's shared storage.
type Tab struct {
	ID        string
	Store     *session.Store
	Guard     *guard.Guard
	Navigator *guard.Navigator
	Services  *service.Service

	area    *storage.Area
	updates chan guard.Decision
	done    chan struct{}

	mu        sync.Mutex
	lastSeen  time.Time
	closeOnce sync.Once
}

// Updates delivers re-render instructions after guard transitions. Only the
// latest decision is kept when the consumer falls behind.
func (t *Tab) Updates() <-chan guard.Decision { return t.updates }

// Done is closed when the tab is closed.
func (t *Tab) Done() <-chan struct{} { return t.done }

// LastSeen returns the last time the tab was used.
func (t *Tab) LastSeen() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSeen
}

func (t *Tab) touch(now time.Time) {
	t.mu.Lock()
	t.lastSeen = now
	t.mu.Unlock()
}

func (t *Tab) publish(d guard.Decision) {
	select {
	case t.updates <- d:
		return
	default:
	}
	// Drop the stale decision and keep the newest.
	select {
	case <-t.updates:
	default:
	}
	select {
	case t.updates <- d:
	default:
	}
}

// DiscardUpdates drops a decision that no socket picked up.
func (t *Tab) DiscardUpdates() {
	select {
	case <-t.updates:
	default:
	}
}

func (t *Tab) close() {
	t.closeOnce.Do(func() {
		t.Navigator.Close()
		t.Guard.Close()
		t.area.Close()
		close(t.done)
	})
}
