package catalog

import (
	"context"
	"sync"
	"time"
)

type MemStore struct {
	mu     sync.RWMutex
	items  map[int64]Product
	nextID int64
	now    func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		items:  make(map[int64]Product),
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemStore) Ping(context.Context) error { return nil }

// Create holds the write lock across id allocation, timestamping, insert and
// increment so concurrent callers never share or skip an id.
func (s *MemStore) Create(_ context.Context, name string, price float64) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Product{
		ID:        s.nextID,
		Name:      name,
		Price:     price,
		CreatedAt: s.now(),
	}
	s.items[p.ID] = p
	s.nextID++

	return p, nil
}

func (s *MemStore) Get(_ context.Context, id int64) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.items[id]
	return p, ok, nil
}

// Len reports how many products are stored.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
