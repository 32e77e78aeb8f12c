package driving

import (
	"context"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// IndexService exposes vector index administration.
type IndexService interface {
	// Ensure binds the configured collection to the embedder's dimension,
	// migrating if needed.
	Ensure(ctx context.Context, retireStale bool) (*domain.CollectionHandle, error)

	// Stats returns the entry count and dimension of the active collection.
	Stats(ctx context.Context) (*domain.IndexStats, error)

	// List returns every physical collection in the store.
	List(ctx context.Context) ([]domain.CollectionInfo, error)

	// Reset deletes a physical collection. This is the only operation that
	// removes indexed entries.
	Reset(ctx context.Context, name string) error
}
