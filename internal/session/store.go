// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chainforge/optionsim/internal/cherr"
)

// Store persists sessions. Saves are full snapshots, last-write-wins;
// implementations never merge partial updates.
type Store interface {
	// Get returns the latest persisted snapshot, or a not-found error.
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	// Save writes a full snapshot.
	Save(ctx context.Context, s *Session) error
	// Delete removes a session, reporting whether it existed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	// Cleanup removes expired sessions and returns how many were
	// removed. TTL-backed stores return 0 and let the store expire
	// keys on its own.
	Cleanup(ctx context.Context) (int, error)
}

// Enumerator is implemented by stores that can list live sessions, so
// the walk cache can be evicted in lockstep with cleanup.
type Enumerator interface {
	ActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

// idleHorizon is how long a session may go untouched before the
// in-process cleanup sweep removes it.
const idleHorizon = 30 * time.Minute

// MemoryStore keeps sessions in a process-local map. Suitable for a
// single instance; replicated deployments use the Redis store.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]Session
}

// NewMemoryStore builds an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[uuid.UUID]Session)}
}

// Get returns a copy of the stored session.
func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, cherr.NotFound("session %s not found", id)
	}
	out := s
	return &out, nil
}

// Save stores a snapshot of the session by value.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

// Delete removes the session, reporting whether it existed.
func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok, nil
}

// Cleanup removes sessions idle past the horizon and returns the count.
func (m *MemoryStore) Cleanup(_ context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-idleHorizon)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// ActiveIDs lists every stored session id.
func (m *MemoryStore) ActiveIDs(_ context.Context) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
