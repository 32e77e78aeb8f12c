package driving

import (
	"context"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// ProgressFunc is called after each chunk is processed.
type ProgressFunc func(done, total int, chunkID string)

// IngestOptions configures one ingestion run.
type IngestOptions struct {
	// Collection overrides the configured logical collection name.
	Collection string

	// RetireStale deletes collections of other dimensions after migration.
	RetireStale bool

	// Progress receives per-chunk progress. May be nil.
	Progress ProgressFunc
}

// IngestionService drives chunks through embedding into the vector index.
type IngestionService interface {
	// Ingest embeds and upserts chunks. Per-chunk failures are recorded in the
	// report and do not stop the run.
	Ingest(ctx context.Context, chunks []domain.Chunk, opts IngestOptions) (*domain.IngestionReport, error)

	// IngestDocument extracts chunks from a structured knowledge-base document
	// and ingests them. A schema error aborts before anything is written.
	IngestDocument(ctx context.Context, data []byte, opts IngestOptions) (*domain.IngestionReport, error)

	// History returns up to limit past runs, newest first.
	History(ctx context.Context, limit int) ([]domain.IngestionRun, error)
}
