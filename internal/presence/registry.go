// Package presence tracks which users currently own a live realtime connection.
package presence

import (
	"sort"
	"sync"
)

// Registry maps a user id to exactly one connection. A second Register for the
// same user replaces the first; only the latest connection is reachable.
type Registry[C comparable] struct {
	mu    sync.RWMutex
	conns map[string]C
}

// NewRegistry returns an empty registry
func NewRegistry[C comparable]() *Registry[C] {
	return &Registry[C]{conns: make(map[string]C)}
}

// Register inserts or overwrites the connection for userID
func (r *Registry[C]) Register(userID string, conn C) {
	r.mu.Lock()
	r.conns[userID] = conn
	r.mu.Unlock()
}

// Unregister removes userID; absent users are ignored
func (r *Registry[C]) Unregister(userID string) {
	r.mu.Lock()
	delete(r.conns, userID)
	r.mu.Unlock()
}

// Release removes userID only while conn is still its registered connection.
// It reports whether an entry was removed.
func (r *Registry[C]) Release(userID string, conn C) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.conns[userID]; ok && current == conn {
		delete(r.conns, userID)
		return true
	}
	return false
}

// Lookup returns the connection of an online user
func (r *Registry[C]) Lookup(userID string) (C, bool) {
	r.mu.RLock()
	conn, ok := r.conns[userID]
	r.mu.RUnlock()
	return conn, ok
}

// Snapshot returns the sorted ids of every online user
func (r *Registry[C]) Snapshot() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Len returns the number of online users
func (r *Registry[C]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
