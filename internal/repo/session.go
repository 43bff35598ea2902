// Package repo contains the storage of per-session view state.
// Each backend has its own file with a SessionRepo implementation.
// No business logic lives here: only storage and encoding.
package repo

import (
	"context"
	"sync"
	"time"

	"github.com/pkordes/trip-planner/web/internal/domain"
)

// UpdateFunc computes the next state of a session from its current state.
// It may be called more than once per Update when the backend retries after
// a concurrent write, so it must not have side effects beyond its return value.
type UpdateFunc func(domain.ViewState) domain.ViewState

// SessionRepo stores one domain.ViewState per page session.
// The service layer depends on this interface, not on a concrete backend,
// which allows the service to be unit-tested against the memory store.
type SessionRepo interface {
	// Get returns the state of session id. An unknown or expired session
	// yields domain.NewViewState(), never an error.
	Get(ctx context.Context, id string) (domain.ViewState, error)

	// Update applies fn to the state of session id atomically with respect
	// to other Updates of the same session, stores the result and returns it.
	Update(ctx context.Context, id string, fn UpdateFunc) (domain.ViewState, error)
}

type memoryEntry struct {
	state    domain.ViewState
	lastSeen time.Time
}

// MemorySessionRepo keeps sessions in process memory.
// Sessions idle for longer than the TTL are treated as absent and removed by
// PurgeExpired.
type MemorySessionRepo struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemorySessionRepo constructs an empty in-memory store.
// A ttl of zero keeps sessions until the process exits.
func NewMemorySessionRepo(ttl time.Duration) *MemorySessionRepo {
	return &MemorySessionRepo{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the state of session id.
func (r *MemorySessionRepo) Get(_ context.Context, id string) (domain.ViewState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.live(id)
	if !ok {
		return domain.NewViewState(), nil
	}
	return e.state, nil
}

// Update applies fn under the store lock.
func (r *MemorySessionRepo) Update(_ context.Context, id string, fn UpdateFunc) (domain.ViewState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := domain.NewViewState()
	if e, ok := r.live(id); ok {
		current = e.state
	}
	next := fn(current)
	r.entries[id] = memoryEntry{state: next, lastSeen: r.now()}
	return next, nil
}

// PurgeExpired drops every session idle for longer than the TTL and returns
// how many were removed.
func (r *MemorySessionRepo) PurgeExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		if r.expired(e) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included.
func (r *MemorySessionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// live returns the entry for id unless it is missing or expired.
// Callers must hold r.mu.
func (r *MemorySessionRepo) live(id string) (memoryEntry, bool) {
	e, ok := r.entries[id]
	if !ok || r.expired(e) {
		return memoryEntry{}, false
	}
	return e, true
}

func (r *MemorySessionRepo) expired(e memoryEntry) bool {
	return r.ttl > 0 && r.now().Sub(e.lastSeen) > r.ttl
}
