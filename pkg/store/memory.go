package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used in tests and in CLI runs where no
// MongoDB is configured. Results vanish when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]Result
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[string]Result)}
}

// SaveResult stores a result in memory, assigning a fresh UUID if needed.
func (s *MemoryStore) SaveResult(ctx context.Context, r Result) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.RowCount = r.Rows.Len()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.ID] = r
	return r.ID, nil
}

// GetResult loads a result by ID.
func (s *MemoryStore) GetResult(ctx context.Context, id string) (Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	if !ok {
		return Result{}, ErrNotFound
	}
	return r, nil
}

// ListResults returns summaries of the most recent results, newest first.
func (s *MemoryStore) ListResults(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	s.mu.RLock()
	summaries := make([]Summary, 0, len(s.results))
	for _, r := range s.results {
		summaries = append(summaries, Summary{
			ID:        r.ID,
			Label:     r.Label,
			CreatedAt: r.CreatedAt,
			RowCount:  r.RowCount,
		})
	}
	s.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// DeleteResult removes a result by ID.
func (s *MemoryStore) DeleteResult(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[id]; !ok {
		return ErrNotFound
	}
	delete(s.results, id)
	return nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
