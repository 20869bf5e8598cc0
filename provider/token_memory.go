package provider

import (
	"context"
	"sync"
)

// MemoryTokenStore implements providers.TokenStore in process memory.
// Entries live for the lifetime of the process and are never evicted.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemoryTokenStore creates an empty store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		tokens: make(map[string]string),
	}
}

// Get returns the token stored for username
func (s *MemoryTokenStore) Get(_ context.Context, username string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[username]
	return token, ok, nil
}

// Put stores token for username, replacing any previous token
func (s *MemoryTokenStore) Put(_ context.Context, username, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[username] = token
	return nil
}

// CompareAndSwap stores new only if the current token equals old
func (s *MemoryTokenStore) CompareAndSwap(_ context.Context, username, old, new string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens[username] != old {
		return false, nil
	}
	s.tokens[username] = new
	return true, nil
}

// Len returns the number of registered usernames
func (s *MemoryTokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
