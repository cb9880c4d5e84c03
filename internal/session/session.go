// Package session holds the city the user last searched for.
//
// A State has one writer, the search view, and any number of readers. The
// web frontend keeps one State per visitor in a Store; the terminal frontend
// keeps a single State for the life of the process.
package session

import (
	"context"
	"sync"
)

// Reader is the read-only view of a State handed to the results view.
type Reader interface {
	City() string
}

// State is the session's current city. The zero value is an empty session.
type State struct {
	mu   sync.RWMutex
	city string
}

// New returns a State pre-filled with city.
func New(city string) *State {
	return &State{city: city}
}

func (s *State) City() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.city
}

// SetCity is the only mutation entry point.
func (s *State) SetCity(city string) {
	s.mu.Lock()
	s.city = city
	s.mu.Unlock()
}

// Store maps visitor session IDs to their State.
type Store interface {
	// Load returns the State for id, or a fresh empty one if id is unknown.
	// Only Save records a session.
	Load(ctx context.Context, id string) (*State, error)
	// Save records st as the State for id.
	Save(ctx context.Context, id string, st *State) error
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*State)}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.sessions[id]; ok {
		return st, nil
	}
	return &State{}, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, st *State) error {
	m.mu.Lock()
	m.sessions[id] = st
	m.mu.Unlock()
	return nil
}

// Len reports how many sessions are held.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
