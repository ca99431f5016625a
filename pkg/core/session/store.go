package session

import (
	"context"
	"sync"
	"time"
)

// Store persists session states. Load reports ok=false for unknown or expired ids.
type Store interface {
	Load(ctx context.Context, id string) (State, bool, error)
	Save(ctx context.Context, s State) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory. Entries idle for longer than
// the TTL are dropped lazily; a zero TTL keeps them forever.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]State
	ttl      time.Duration
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]State),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Load(_ context.Context, id string) (State, bool, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return State{}, false, nil
	}
	if m.expired(s) {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return State{}, false, nil
	}
	s.Result = s.Result.Clone()
	return s, true, nil
}

func (m *MemoryStore) Save(_ context.Context, s State) error {
	s.Result = s.Result.Clone()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Sweep removes every expired entry and returns how many were dropped.
func (m *MemoryStore) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) expired(s State) bool {
	return m.ttl > 0 && m.now().Sub(s.UpdatedAt) > m.ttl
}
