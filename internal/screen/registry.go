package screen

import (
	"context"
	"log"
	"sync"
	"time"
)

// Factory builds the screen of kind for a session. The context carries the
// request that triggered the creation.
type Factory func(ctx context.Context, sessionID string, kind Kind) (*Screen, error)

type registryKey struct {
	session string
	kind    Kind
}

type registryEntry struct {
	screen *Screen
	used   time.Time
}

// Registry keeps one screen per session and kind. Drafts live only here and
// are lost when the process exits.
type Registry struct {
	mu      sync.Mutex
	factory Factory
	screens map[registryKey]*registryEntry
	now     func() time.Time
}

func NewRegistry(f Factory) *Registry {
	return &Registry{factory: f, screens: make(map[registryKey]*registryEntry), now: time.Now}
}

// Get returns the screen for (sessionID, kind), creating and loading it on
// first use.
func (r *Registry) Get(ctx context.Context, sessionID string, kind Kind) (*Screen, error) {
	k := registryKey{sessionID, kind}
	r.mu.Lock()
	if e, ok := r.screens[k]; ok {
		e.used = r.now()
		r.mu.Unlock()
		return e.screen, nil
	}
	r.mu.Unlock()

	s, err := r.factory(ctx, sessionID, kind)
	if err != nil {
		return nil, err
	}
	s.Load(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.screens[k]; ok {
		// Another request won the race.
		e.used = r.now()
		return e.screen, nil
	}
	r.screens[k] = &registryEntry{screen: s, used: r.now()}
	return s, nil
}

// Drop forgets every screen of a session.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.screens {
		if k.session == sessionID {
			delete(r.screens, k)
		}
	}
}

// Prune drops screens not used for longer than idle and reports how many
// went.
func (r *Registry) Prune(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k, e := range r.screens {
		if e.used.Before(cutoff) {
			delete(r.screens, k)
			n++
		}
	}
	return n
}

// Sweep prunes every interval until ctx is done.
func (r *Registry) Sweep(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Prune(idle); n > 0 {
				log.Printf("[screens] pruned %d idle screens", n)
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.screens)
}
