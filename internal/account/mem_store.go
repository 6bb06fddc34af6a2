package account

import (
	"context"
	"sync"
)

// MemStore keeps accounts in memory. It backs the console's standalone mode
// and the test suites.
type MemStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

func NewMemStore() *MemStore {
	return &MemStore{accounts: make(map[string]Account)}
}

func (s *MemStore) Exists(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[username]
	return ok, nil
}

func (s *MemStore) Verify(ctx context.Context, username, password string) (*Account, error) {
	s.mu.RLock()
	a, ok := s.accounts[username]
	s.mu.RUnlock()
	if !ok || !verifyPassword(&a, password) {
		return nil, ErrInvalidCredentials
	}
	return &a, nil
}

func (s *MemStore) Create(ctx context.Context, a Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.Username]; ok {
		return ErrDuplicateUsername
	}
	s.accounts[a.Username] = a
	return nil
}
