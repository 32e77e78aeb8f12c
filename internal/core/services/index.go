package services

import (
	"context"
	"errors"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
	"github.com/merkuze-health/merkuze/internal/core/ports/driving"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService administers the configured logical collection at the
// embedder's dimension.
type IndexService struct {
	index    *VectorIndex
	embedder driven.EmbeddingService
	logical  string
}

// NewIndexService creates an index service. The embedder may be nil, in which
// case only List and Reset are available.
func NewIndexService(index *VectorIndex, embedder driven.EmbeddingService, logical string) *IndexService {
	if logical == "" {
		logical = domain.DefaultCollection
	}
	return &IndexService{index: index, embedder: embedder, logical: logical}
}

// Ensure binds the logical collection to the embedder's dimension.
func (s *IndexService) Ensure(ctx context.Context, retireStale bool) (*domain.CollectionHandle, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	return s.index.EnsureCollection(ctx, s.logical, s.embedder.Dimensions(), retireStale)
}

// Stats returns the active collection's health. If nothing has been ingested
// at the current dimension the count is zero and Collection is empty.
func (s *IndexService) Stats(ctx context.Context) (*domain.IndexStats, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	dims := s.embedder.Dimensions()
	h, err := s.index.Resolve(ctx, s.logical, dims)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.IndexStats{Dimension: dims}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.index.Stats(ctx, h)
}

// List returns every physical collection.
func (s *IndexService) List(ctx context.Context) ([]domain.CollectionInfo, error) {
	return s.index.List(ctx)
}

// Reset deletes a physical collection.
func (s *IndexService) Reset(ctx context.Context, name string) error {
	if name == "" {
		return domain.ErrInvalidInput
	}
	return s.index.Reset(ctx, name)
}
