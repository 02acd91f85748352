package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/taxoload/pkg/taxoload/store"
)

// Store is an in-memory implementation of store.Store for tests and dry runs.
type Store struct {
	mu     sync.RWMutex
	tables map[string]store.Table
	writes map[string]int
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		tables: make(map[string]store.Table),
		writes: make(map[string]int),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Write replaces the named table with a copy of t.
func (s *Store) Write(ctx context.Context, t store.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[t.Name] = t.Clone()
	s.writes[t.Name]++
	return nil
}

// Read returns a copy of the named table.
func (s *Store) Read(ctx context.Context, name string) (store.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[name]
	if !ok {
		return store.Table{}, store.NotFound(name)
	}
	return t.Clone(), nil
}

// Tables lists stored table names in sorted order.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Writes reports how many times the named table has been written.
func (s *Store) Writes(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes[name]
}
