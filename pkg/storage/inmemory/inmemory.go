// Package inmemory provides a storage.Driver kept entirely in process memory.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/papercomputeco/verde/pkg/exchange"
	"github.com/papercomputeco/verde/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of exchanges
	mu sync.RWMutex

	// exchanges is keyed by question hash
	exchanges map[string]*exchange.Exchange

	// nextID is the last assigned exchange ID
	nextID int64
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		exchanges: make(map[string]*exchange.Exchange),
	}
}

// Upsert stores ex under its question hash, replacing any previous exchange
// and assigning it the next ID.
func (s *Driver) Upsert(_ context.Context, ex *exchange.Exchange) error {
	if ex == nil {
		return storage.ErrNilExchange
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	ex.ID = s.nextID

	stored := *ex
	s.exchanges[ex.QuestionHash] = &stored
	return nil
}

// Recent returns up to limit exchanges, newest first.
func (s *Driver) Recent(_ context.Context, limit int) ([]*exchange.Exchange, error) {
	all := s.sorted()
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Get retrieves an exchange by its question hash.
func (s *Driver) Get(_ context.Context, hash string) (*exchange.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ex, ok := s.exchanges[hash]
	if !ok {
		return nil, storage.NotFoundError{Hash: hash}
	}

	out := *ex
	return &out, nil
}

// List returns all exchanges, newest first.
func (s *Driver) List(_ context.Context) ([]*exchange.Exchange, error) {
	return s.sorted(), nil
}

// Count returns the number of stored exchanges.
func (s *Driver) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.exchanges), nil
}

// Close is a no-op for the in-memory driver.
func (s *Driver) Close() error {
	return nil
}

// sorted returns copies of every exchange ordered by descending ID.
func (s *Driver) sorted() []*exchange.Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*exchange.Exchange, 0, len(s.exchanges))
	for _, ex := range s.exchanges {
		cp := *ex
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID > out[j].ID
	})
	return out
}
