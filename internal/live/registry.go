// Package live pushes the assessment chat's staged reveal to the browser
// over a websocket, one feed per session.
package live

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"

	"github.com/ashureev/kneeoa/internal/session"
)

// closer is the part of *websocket.Conn the registry needs.
type closer interface {
	Close(code websocket.StatusCode, reason string) error
}

// Registry tracks the active feed of each session. Registering a second
// feed for the same session closes the first, so two timers never tick the
// same state.
type Registry struct {
	mu     sync.Mutex
	active map[session.Key]closer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[session.Key]closer)}
}

// Active returns the registered feed for key, if any.
func (r *Registry) Active(key session.Key) (closer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.active[key]
	return c, ok
}

// Register makes conn the feed for key, closing any previous one.
// The close handshake runs outside the lock.
func (r *Registry) Register(key session.Key, conn closer) {
	r.mu.Lock()
	existing, ok := r.active[key]
	r.active[key] = conn
	r.mu.Unlock()

	if ok && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "feed replaced")
		slog.Info("Live feed replaced", "user_id", key.UserID, "session_id", key.SessionID)
	}
}

// Unregister removes conn if it is still the feed for key.
func (r *Registry) Unregister(key session.Key, conn closer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.active[key]; ok && current == conn {
		delete(r.active, key)
	}
}

// Close terminates the feed for key. The session sweeper calls it.
func (r *Registry) Close(key session.Key) {
	r.mu.Lock()
	conn, ok := r.active[key]
	delete(r.active, key)
	r.mu.Unlock()

	if ok {
		_ = conn.Close(websocket.StatusNormalClosure, "session expired")
		slog.Info("Live feed closed", "user_id", key.UserID, "session_id", key.SessionID)
	}
}

// Len returns the number of active feeds.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
