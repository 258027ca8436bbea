// Package storage models the browser's durable per-origin storage: every tab
// of an origin reads and writes the same items, and a write raises a change
// event in every other tab of that origin but never in the tab that wrote.
package storage

import (
	"context"
	"sync"

	"traceper/internal/logger"
	"traceper/internal/repository"
)

// Event describes one item change as seen by a tab that did not make it.
type Event struct {
	Key      string
	OldValue string
	NewValue string
	Removed  bool
	Source   string // id of the writing area
}

// Origin is the storage shared by all tabs of one origin.
type Origin struct {
	name    string
	backend repository.KeyValue
	log     *logger.Logger

	// writeMu serialises writes so old values in events are consistent.
	writeMu sync.Mutex

	mu    sync.RWMutex
	areas map[string]*Area
}

func NewOrigin(name string, backend repository.KeyValue, log *logger.Logger) *Origin {
	return &Origin{
		name:    name,
		backend: backend,
		log:     logger.OrNop(log),
		areas:   make(map[string]*Area),
	}
}

// Name returns the origin identifier, e.g. "http://localhost:8080".
func (o *Origin) Name() string { return o.name }

// Open attaches a new tab-scoped view with the given id and starts its dispatcher.
func (o *Origin) Open(id string) *Area {
	a := newArea(id, o)

	o.mu.Lock()
	o.areas[id] = a
	o.mu.Unlock()

	go a.run()
	return a
}

// Len reports how many areas are attached.
func (o *Origin) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.areas)
}

func (o *Origin) detach(id string) {
	o.mu.Lock()
	delete(o.areas, id)
	o.mu.Unlock()
}

// broadcast queues ev on every attached area except its source.
func (o *Origin) broadcast(ev Event) {
	o.mu.RLock()
	targets := make([]*Area, 0, len(o.areas))
	for id, a := range o.areas {
		if id != ev.Source {
			targets = append(targets, a)
		}
	}
	o.mu.RUnlock()

	for _, a := range targets {
		a.enqueue(ev)
	}
}

func (o *Origin) set(ctx context.Context, source, key, value string) error {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	old, had, err := o.backend.Get(ctx, key)
	if err != nil {
		o.log.Debugw("storage_read_before_write_failed", "key", key, "err", err)
		had = false
	}
	if err := o.backend.Set(ctx, key, value); err != nil {
		return err
	}
	if had && old == value {
		return nil
	}
	o.broadcast(Event{Key: key, OldValue: old, NewValue: value, Source: source})
	return nil
}

func (o *Origin) remove(ctx context.Context, source, key string) error {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	old, had, err := o.backend.Get(ctx, key)
	if err != nil {
		o.log.Debugw("storage_read_before_write_failed", "key", key, "err", err)
		had = true // unknown prior state; announce the removal anyway
	}
	if err := o.backend.Remove(ctx, key); err != nil {
		return err
	}
	if !had {
		return nil
	}
	o.broadcast(Event{Key: key, OldValue: old, Removed: true, Source: source})
	return nil
}
