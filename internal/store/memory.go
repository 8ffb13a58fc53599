// internal/store/memory.go
//
// In-memory implementation of the Store interface.
//
// Characteristics:
//   - Results kept in a slice in insertion order.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memory is a slice-backed Store implementation.
type memory struct {
	mu      sync.RWMutex // guards results and nextID
	results []Result
	nextID  int64
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{nextID: 1}
}

func (m *memory) SaveResult(ctx context.Context, r Result) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.nextID
	m.nextID++
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.results = append(m.results, r)
	return r.ID, nil
}

func (m *memory) MarkUploaded(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.results {
		if m.results[i].ID == id {
			m.results[i].Uploaded = true
			return nil
		}
	}
	return ErrNotFound
}

func (m *memory) Recent(ctx context.Context, limit int) ([]Result, error) {
	limit = clampLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Result, 0, limit)
	for i := len(m.results) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.results[i])
	}
	return out, nil
}

func (m *memory) Top(ctx context.Context, limit int) ([]Result, error) {
	limit = clampLimit(limit)
	m.mu.RLock()
	all := append([]Result(nil), m.results...)
	m.mu.RUnlock()
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
