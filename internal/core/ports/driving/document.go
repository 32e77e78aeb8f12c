package driving

import (
	"context"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// DocumentService manages administrator-uploaded knowledge documents.
type DocumentService interface {
	// Add stores a new document and returns it with its generated ID.
	Add(ctx context.Context, title, filename, content string) (*domain.KnowledgeDocument, error)

	// List returns all documents, newest first.
	List(ctx context.Context) ([]domain.KnowledgeDocument, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.KnowledgeDocument, error)

	// Remove deletes a document.
	Remove(ctx context.Context, id string) error
}
