package storage

import (
	"context"
	"sync"
)

// Area is one tab's view of its origin's storage.
//
// Events from other tabs are delivered to OnChange listeners serially on the
// area's own dispatcher goroutine, in the order the writes happened. Writes made
// through this area are never echoed back to it.
type Area struct {
	id     string
	origin *Origin

	mu        sync.Mutex
	listeners map[uint64]func(Event)
	nextID    uint64
	queue     []Event
	closed    bool

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

func newArea(id string, o *Origin) *Area {
	return &Area{
		id:        id,
		origin:    o,
		listeners: make(map[uint64]func(Event)),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

func (a *Area) ID() string { return a.id }

func (a *Area) Get(ctx context.Context, key string) (string, bool, error) {
	return a.origin.backend.Get(ctx, key)
}

func (a *Area) Set(ctx context.Context, key, value string) error {
	return a.origin.set(ctx, a.id, key, value)
}

func (a *Area) Remove(ctx context.Context, key string) error {
	return a.origin.remove(ctx, a.id, key)
}

// OnChange registers fn for events raised by other areas. The returned func
// deregisters it and is safe to call more than once.
func (a *Area) OnChange(fn func(Event)) (cancel func()) {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.listeners, id)
			a.mu.Unlock()
		})
	}
}

// Close detaches the area from its origin and stops the dispatcher.
// Queued but undelivered events are dropped.
func (a *Area) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.stopped
		return
	}
	a.closed = true
	a.queue = nil
	a.mu.Unlock()

	a.origin.detach(a.id)
	close(a.done)
	<-a.stopped
}

func (a *Area) enqueue(ev Event) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.queue = append(a.queue, ev)
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

func (a *Area) run() {
	defer close(a.stopped)
	for {
		select {
		case <-a.done:
			return
		case <-a.wake:
		}

		for {
			ev, fns, ok := a.next()
			if !ok {
				break
			}
			for _, fn := range fns {
				fn(ev)
			}
		}
	}
}

// next pops the oldest event together with a snapshot of the listeners.
func (a *Area) next() (Event, []func(Event), bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || len(a.queue) == 0 {
		return Event{}, nil, false
	}
	ev := a.queue[0]
	a.queue = a.queue[1:]

	fns := make([]func(Event), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	return ev, fns, true
}
