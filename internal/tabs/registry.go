package tabs

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"traceper/internal/apiclient"
	"traceper/internal/guard"
	"traceper/internal/logger"
	"traceper/internal/service"
	"traceper/internal/session"
	"traceper/internal/storage"
)

// Config holds what every new tab is built from.
type Config struct {
	Routes     guard.Routes
	APIBaseURL string
	HTTPClient *http.Client
}

// Registry owns the open tabs of one origin.
type Registry struct {
	origin *storage.Origin
	cfg    Config
	log    *logger.Logger
	now    func() time.Time

	mu   sync.RWMutex
	tabs map[string]*Tab
}

func NewRegistry(origin *storage.Origin, cfg Config, log *logger.Logger) (*Registry, error) {
	if err := cfg.Routes.Validate(); err != nil {
		return nil, err
	}
	// Validate the base URL once instead of failing on the first tab.
	if _, err := apiclient.New(cfg.APIBaseURL, cfg.HTTPClient, nil); err != nil {
		return nil, err
	}
	return &Registry{
		origin: origin,
		cfg:    cfg,
		log:    logger.OrNop(log),
		now:    time.Now,
		tabs:   make(map[string]*Tab),
	}, nil
}

// Routes returns the route table shared by all tabs.
func (r *Registry) Routes() guard.Routes { return r.cfg.Routes }

// Open attaches a new tab. Its guard starts from whatever session the profile
// already holds.
func (r *Registry) Open() (*Tab, error) {
	id := uuid.NewString()
	area := r.origin.Open(id)
	store := session.NewStore(area, r.log)

	api, err := apiclient.New(r.cfg.APIBaseURL, r.cfg.HTTPClient, store)
	if err != nil {
		area.Close()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	t := &Tab{
		ID:       id,
		Store:    store,
		Guard:    guard.New(store, r.cfg.Routes, r.log),
		Services: service.NewService(api, store, r.log),
		area:     area,
		updates:  make(chan guard.Decision, 1),
		done:     make(chan struct{}),
		lastSeen: r.now(),
	}
	t.Navigator = guard.NewNavigator(t.Guard, t.publish)

	r.mu.Lock()
	r.tabs[id] = t
	r.mu.Unlock()

	r.log.Infow("tab_opened", "tab", id, "state", t.Guard.State().String())
	return t, nil
}

// Get returns an open tab and marks it as used.
func (r *Registry) Get(id string) (*Tab, bool) {
	r.mu.RLock()
	t, ok := r.tabs[id]
	r.mu.RUnlock()
	if ok {
		t.touch(r.now())
	}
	return t, ok
}

// Close detaches a tab; closing an unknown id is a no-op.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	t, ok := r.tabs[id]
	delete(r.tabs, id)
	r.mu.Unlock()
	if ok {
		t.close()
		r.log.Infow("tab_closed", "tab", id)
	}
}

// CloseAll detaches every tab.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.tabs
	r.tabs = make(map[string]*Tab)
	r.mu.Unlock()
	for _, t := range all {
		t.close()
	}
}

// Len reports the number of open tabs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tabs)
}

// Sweep closes tabs idle for longer than ttl and returns how many it closed.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.RLock()
	var stale []string
	for id, t := range r.tabs {
		if t.LastSeen().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range stale {
		r.Close(id)
	}
	return len(stale)
}

// RunSweeper sweeps every interval until ctx is done, then closes all tabs.
func (r *Registry) RunSweeper(ctx context.Context, ttl, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return nil
		case <-ticker.C:
			if n := r.Sweep(ttl); n > 0 {
				r.log.Infow("tabs_swept", "closed", n, "open", r.Len())
			}
		}
	}
}
