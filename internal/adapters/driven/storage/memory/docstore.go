package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentRepository = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentRepository.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.KnowledgeDocument
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.KnowledgeDocument),
	}
}

// Save stores or replaces a document.
func (s *DocumentStore) Save(_ context.Context, doc domain.KnowledgeDocument) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = doc
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.KnowledgeDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// List returns all documents, newest first. Ties are broken by ID.
func (s *DocumentStore) List(_ context.Context) ([]domain.KnowledgeDocument, error) {
	s.mu.RLock()
	docs := make([]domain.KnowledgeDocument, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].UploadedAt.After(docs[j].UploadedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// Delete removes a document.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	return nil
}
