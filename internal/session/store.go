// Package session holds the profile's authentication token and display name.
package session

import (
	"context"
	"sync"

	"traceper/internal/logger"
	"traceper/internal/models"
	"traceper/internal/storage"
)

// Storage keys, shared with every tab of the origin.
const (
	TokenKey       = "token"
	DisplayNameKey = "user_name"
)

// Storage is the tab-scoped durable storage the store writes through.
// *storage.Area satisfies it.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	OnChange(fn func(storage.Event)) (cancel func())
}

// Store is one tab's handle on the session.
//
// Writes go to durable storage, which tells every other tab; the store then
// notifies its own subscribers directly because storage never echoes a write
// back to the tab that made it. Storage failures are logged, never returned:
// reads degrade to "absent" and writes to no-ops.
type Store struct {
	storage Storage
	log     *logger.Logger

	mu     sync.Mutex
	subs   map[uint64]func()
	nextID uint64
}

func NewStore(s Storage, log *logger.Logger) *Store {
	return &Store{
		storage: s,
		log:     logger.OrNop(log),
		subs:    make(map[uint64]func()),
	}
}

// SetSession persists token and displayName. An empty token clears the session.
func (s *Store) SetSession(ctx context.Context, token, displayName string) {
	if token == "" {
		s.ClearSession(ctx)
		return
	}
	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		s.log.Warnw("session_write_failed", "key", TokenKey, "err", err)
	}
	if displayName == "" {
		s.remove(ctx, DisplayNameKey)
	} else if err := s.storage.Set(ctx, DisplayNameKey, displayName); err != nil {
		s.log.Warnw("session_write_failed", "key", DisplayNameKey, "err", err)
	}
	s.notifyLocal()
}

// ClearSession removes both session items.
func (s *Store) ClearSession(ctx context.Context) {
	s.remove(ctx, TokenKey)
	s.remove(ctx, DisplayNameKey)
	s.notifyLocal()
}

func (s *Store) remove(ctx context.Context, key string) {
	if err := s.storage.Remove(ctx, key); err != nil {
		s.log.Warnw("session_write_failed", "key", key, "err", err)
	}
}

// Token returns the stored token; ok is false when absent or unreadable.
func (s *Store) Token() (string, bool) {
	return s.read(TokenKey)
}

// DisplayName returns the stored display name; ok is false when absent or unreadable.
func (s *Store) DisplayName() (string, bool) {
	return s.read(DisplayNameKey)
}

// Session returns both fields at once.
func (s *Store) Session() models.Session {
	token, _ := s.Token()
	name, _ := s.DisplayName()
	return models.Session{Token: token, DisplayName: name}
}

func (s *Store) read(key string) (string, bool) {
	v, ok, err := s.storage.Get(context.Background(), key)
	if err != nil {
		s.log.Debugw("session_read_failed", "key", key, "err", err)
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Subscribe registers fn to run whenever the session may have changed, whether
// the change was made through this store or by another tab. Local
// notifications run on the writer's goroutine; cross-tab ones on the tab's
// storage dispatcher. The returned cancel must be called on teardown.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	stopRemote := s.storage.OnChange(func(ev storage.Event) {
		if ev.Key == TokenKey || ev.Key == DisplayNameKey {
			fn()
		}
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			stopRemote()
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) notifyLocal() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
