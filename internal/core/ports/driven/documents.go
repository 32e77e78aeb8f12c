package driven

import (
	"context"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// DocumentRepository persists administrator-managed knowledge documents.
type DocumentRepository interface {
	// Save stores or replaces a document.
	Save(ctx context.Context, doc domain.KnowledgeDocument) error

	// Get retrieves a document by ID, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.KnowledgeDocument, error)

	// List returns all documents, newest first.
	List(ctx context.Context) ([]domain.KnowledgeDocument, error)

	// Delete removes a document, or returns domain.ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// IngestionHistory records finished ingestion runs.
type IngestionHistory interface {
	// Record stores a run summary.
	Record(ctx context.Context, run domain.IngestionRun) error

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.IngestionRun, error)
}
