package memory

import (
	"context"
	"sync"

	chatRepo "chatrelay/internal/domain/repositories/chat"
)

// SessionStore is a process-local SessionStore.
// Mappings are lost on restart and not shared between instances.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]string
}

var _ chatRepo.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates an empty in-memory session store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]string)}
}

// Get returns the stored handle for key
func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	handle, ok := s.sessions[key]
	return handle, ok, nil
}

// Put stores handle for key, overwriting any existing entry
func (s *SessionStore) Put(ctx context.Context, key, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = handle
	return nil
}

// PutIfAbsent is last-write-wins: it always stores handle and returns it.
// A concurrent first-time resolve for the same key may therefore orphan the
// remote session created by the other caller.
func (s *SessionStore) PutIfAbsent(ctx context.Context, key, handle string) (string, error) {
	return handle, s.Put(ctx, key, handle)
}

// Len returns the number of stored mappings
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
