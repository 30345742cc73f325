package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/hongminglow/all-in-store/internal/storage"
)

var (
	_ storage.SessionStore = (*Store)(nil)
	_ storage.Sweeper      = (*Store)(nil)
)

type entry struct {
	values    map[string]string
	expiresAt time.Time
}

// Store keeps client sessions in process memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]entry
	now      func() time.Time
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]entry), now: time.Now}
}

// Load returns a copy of the values of a live session.
func (s *Store) Load(_ context.Context, id string) (map[string]string, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || !e.expiresAt.After(s.now()) {
		return nil, storage.ErrNotFound
	}
	return maps.Clone(e.values), nil
}

// Save replaces the values of a session.
func (s *Store) Save(_ context.Context, id string, values map[string]string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = entry{values: maps.Clone(values), expiresAt: expiresAt}
	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// DeleteExpired drops expired sessions and returns how many were removed.
func (s *Store) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var removed int64
	for id, e := range s.sessions {
		if !e.expiresAt.After(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}
