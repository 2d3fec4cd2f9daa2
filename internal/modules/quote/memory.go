// README: In-memory quote store for development and tests.
package quote

import (
	"context"
	"sync"

	"vanbook/internal/types"
)

type MemoryStore struct {
	mu     sync.RWMutex
	quotes map[types.ID]Quote
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{quotes: make(map[types.ID]Quote)}
}

func (s *MemoryStore) Create(_ context.Context, q *Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[q.ID] = *q
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id types.ID) (*Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &q, nil
}
