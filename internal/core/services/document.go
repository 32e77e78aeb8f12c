package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
	"github.com/merkuze-health/merkuze/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages administrator-uploaded knowledge documents.
// Documents are records only; they reach the vector index through ingestion.
type DocumentService struct {
	repo driven.DocumentRepository
	now  func() time.Time
}

// NewDocumentService creates a new document service.
func NewDocumentService(repo driven.DocumentRepository) *DocumentService {
	return &DocumentService{
		repo: repo,
		now:  time.Now,
	}
}

// Add stores a new document. The title defaults to the file name without its
// extension.
func (s *DocumentService) Add(ctx context.Context, title, filename, content string) (*domain.KnowledgeDocument, error) {
	if s.repo == nil {
		return nil, domain.ErrUnsupportedType
	}
	if strings.TrimSpace(content) == "" {
		return nil, &domain.EmptyInputError{What: "document content"}
	}

	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "." || filename == string(filepath.Separator) {
		filename = ""
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	if title == "" {
		return nil, fmt.Errorf("document needs a title or file name: %w", domain.ErrInvalidInput)
	}

	doc := domain.KnowledgeDocument{
		ID:         uuid.NewString(),
		Title:      title,
		Filename:   filename,
		Content:    content,
		UploadedAt: s.now().UTC(),
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return &doc, nil
}

// List returns all documents, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.KnowledgeDocument, error) {
	if s.repo == nil {
		return nil, domain.ErrUnsupportedType
	}
	return s.repo.List(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.KnowledgeDocument, error) {
	if s.repo == nil {
		return nil, domain.ErrUnsupportedType
	}
	if id == "" {
		return nil, fmt.Errorf("document id is required: %w", domain.ErrInvalidInput)
	}
	return s.repo.Get(ctx, id)
}

// Remove deletes a document.
func (s *DocumentService) Remove(ctx context.Context, id string) error {
	if s.repo == nil {
		return domain.ErrUnsupportedType
	}
	if id == "" {
		return fmt.Errorf("document id is required: %w", domain.ErrInvalidInput)
	}
	return s.repo.Delete(ctx, id)
}
