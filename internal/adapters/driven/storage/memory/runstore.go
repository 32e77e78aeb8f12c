package memory

import (
	"context"
	"sync"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.IngestionHistory = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.IngestionHistory.
type RunStore struct {
	mu   sync.RWMutex
	runs []domain.IngestionRun
	next int64
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{}
}

// Record stores a run summary and assigns its ID.
func (s *RunStore) Record(_ context.Context, run domain.IngestionRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	run.ID = s.next
	run.Failures = append([]domain.ChunkFailure(nil), run.Failures...)
	s.runs = append(s.runs, run)
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *RunStore) Recent(_ context.Context, limit int) ([]domain.IngestionRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.IngestionRun, 0, min(limit, len(s.runs)))
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[i])
	}
	return out, nil
}
