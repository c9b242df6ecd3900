package session

import (
	"context"
	"sync"
)

// MemoryStore keeps encoded sessions in process memory. Sessions do not expire.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Data, error) {
	s.mu.RLock()
	b := s.sessions[id]
	s.mu.RUnlock()
	return decode(id, b)
}

func (s *MemoryStore) Save(_ context.Context, id string, data *Data) error {
	b, err := encode(id, data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[id] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
func (s *MemoryStore) Close() error               { return nil }

// Len returns the number of stored sessions
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
