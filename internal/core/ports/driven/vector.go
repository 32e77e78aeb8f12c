package driven

import (
	"context"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// VectorStore is the collection-oriented vector database capability.
// Each collection has a fixed dimension and uses cosine similarity.
//
// Implementations must:
//   - treat each entry as an independent unit of failure on upsert
//   - reject vectors whose length differs from the collection dimension with
//     *domain.DimensionMismatchError
//   - return query matches in non-increasing score order
//   - report transient transport failures as retryable *domain.IndexUnavailableError
type VectorStore interface {
	// ListCollections returns all physical collections.
	ListCollections(ctx context.Context) ([]domain.CollectionInfo, error)

	// CreateCollection creates a collection. It fails with domain.ErrAlreadyExists
	// if the name is taken.
	CreateCollection(ctx context.Context, name string, dimension int, metric string) error

	// DescribeCollection returns collection details or domain.ErrNotFound.
	DescribeCollection(ctx context.Context, name string) (*domain.CollectionInfo, error)

	// DeleteCollection removes a collection and all of its entries.
	DeleteCollection(ctx context.Context, name string) error

	// Upsert inserts or overwrites entries by ID.
	Upsert(ctx context.Context, collection string, entries []domain.IndexedEntry) error

	// Query returns up to topK nearest entries by cosine similarity.
	Query(ctx context.Context, collection string, vector []float32, topK int, includeMetadata bool) ([]domain.Match, error)

	// Count returns the number of entries in a collection. Empty collections return 0.
	Count(ctx context.Context, collection string) (int, error)

	// Close releases resources.
	Close() error
}
