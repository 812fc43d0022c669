// Package memory provides an in-memory session.Store.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/warp/shift-pay/session"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/CLI)
// =============================================================================

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

func New() *Store {
	return &Store{sessions: make(map[string]*session.Session)}
}

// Save stores a copy of s, replacing any session with the same ID.
func (m *Store) Save(_ context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = clone(s)
	return nil
}

func (m *Store) Get(_ context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return clone(s), nil
}

func (m *Store) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return session.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *Store) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired included.
func (m *Store) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// clone copies the session and its row slice so callers cannot mutate
// stored state. Cell slices are not mutated after Save and are shared.
func clone(s *session.Session) *session.Session {
	c := *s
	c.Header = slices.Clone(s.Header)
	c.Rows = slices.Clone(s.Rows)
	return &c
}
