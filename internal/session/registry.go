// Package session tracks the independent games running on a server, one
// per connection, so they can be stopped together on shutdown.
package session

import (
	"context"
	"sync"
	"time"
)

// Handle identifies a registered game.
type Handle struct {
	ID      int
	User    string
	Started time.Time

	cancel context.CancelFunc
}

// Registry holds the running games.
type Registry struct {
	mu     sync.RWMutex
	nextID int
	games  map[int]*Handle
	closed bool
}

func NewRegistry() *Registry {
	return &Registry{games: make(map[int]*Handle)}
}

// Register adds a game for user. The returned context is cancelled when the
// registry shuts down; the game must call Unregister when it ends.
// After Shutdown the context is already cancelled.
func (r *Registry) Register(parent context.Context, user string) (*Handle, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	r.mu.Lock()
	defer r.mu.Unlock()

	h := &Handle{ID: r.nextID, User: user, Started: time.Now(), cancel: cancel}
	r.nextID++
	if r.closed {
		cancel()
		return h, ctx
	}
	r.games[h.ID] = h
	return h, ctx
}

// Unregister removes a game and releases its context.
func (r *Registry) Unregister(id int) {
	r.mu.Lock()
	h, ok := r.games[id]
	delete(r.games, id)
	r.mu.Unlock()

	if ok {
		h.cancel()
	}
}

// Count returns the number of running games.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// Shutdown stops every game and waits for them to unregister, or until
// timeout. It reports whether all games finished in time.
func (r *Registry) Shutdown(timeout time.Duration) bool {
	r.mu.Lock()
	r.closed = true
	for _, h := range r.games {
		h.cancel()
	}
	r.mu.Unlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		if r.Count() == 0 {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-ticker.C:
		}
	}
}
