// Package memory provides an in-process vector store for tests and
// ephemeral serving.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/merkuze-health/merkuze/internal/adapters/driven/vectorstore"
	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

type collection struct {
	info    domain.CollectionInfo
	entries map[string]domain.IndexedEntry
}

// Store is an in-memory implementation of driven.VectorStore.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewStore creates an empty in-memory vector store.
func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// ListCollections returns all collections sorted by name.
func (s *Store) ListCollections(_ context.Context) ([]domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]domain.CollectionInfo, 0, len(s.collections))
	for _, c := range s.collections {
		infos = append(infos, c.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// CreateCollection creates an empty collection.
func (s *Store) CreateCollection(_ context.Context, name string, dimension int, metric string) error {
	if name == "" || dimension <= 0 {
		return fmt.Errorf("create collection %q (dimension %d): %w", name, dimension, domain.ErrInvalidInput)
	}
	if metric == "" {
		metric = domain.MetricCosine
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; ok {
		return fmt.Errorf("collection %s: %w", name, domain.ErrAlreadyExists)
	}
	s.collections[name] = &collection{
		info:    domain.CollectionInfo{Name: name, Dimension: dimension, Metric: metric},
		entries: make(map[string]domain.IndexedEntry),
	}
	return nil
}

// DescribeCollection returns a collection's identity.
func (s *Store) DescribeCollection(_ context.Context, name string) (*domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	info := c.info
	return &info, nil
}

// DeleteCollection removes a collection and its entries.
func (s *Store) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	delete(s.collections, name)
	return nil
}

// Upsert inserts or overwrites entries by id. All entries are validated
// before any is written.
func (s *Store) Upsert(_ context.Context, name string, entries []domain.IndexedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	if err := vectorstore.ValidateEntries(name, c.info.Dimension, entries); err != nil {
		return err
	}
	for _, e := range entries {
		c.entries[e.ID] = copyEntry(e)
	}
	return nil
}

// Query returns the topK most similar entries.
func (s *Store) Query(
	_ context.Context,
	name string,
	vector []float32,
	topK int,
	includeMetadata bool,
) ([]domain.Match, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive: %w", domain.ErrInvalidInput)
	}
	if err := vectorstore.ValidateVector(vector); err != nil {
		return nil, fmt.Errorf("query vector: %w", err)
	}

	// Snapshot under the lock, score outside it.
	s.mu.RLock()
	c, ok := s.collections[name]
	if !ok {
		s.mu.RUnlock()
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	dim := c.info.Dimension
	snapshot := make([]domain.IndexedEntry, 0, len(c.entries))
	for _, e := range c.entries {
		snapshot = append(snapshot, e)
	}
	s.mu.RUnlock()

	if len(vector) != dim {
		return nil, &domain.DimensionMismatchError{Collection: name, Expected: dim, Actual: len(vector)}
	}
	return vectorstore.TopK(vector, snapshot, topK, includeMetadata), nil
}

// Count returns the number of entries in a collection.
func (s *Store) Count(_ context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return 0, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	return len(c.entries), nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// copyEntry detaches stored data from caller-owned slices and maps.
func copyEntry(e domain.IndexedEntry) domain.IndexedEntry {
	vec := make([]float32, len(e.Vector))
	copy(vec, e.Vector)
	meta := make(map[string]string, len(e.Metadata))
	for k, v := range e.Metadata {
		meta[k] = v
	}
	return domain.IndexedEntry{ID: e.ID, Vector: vec, Metadata: meta}
}
