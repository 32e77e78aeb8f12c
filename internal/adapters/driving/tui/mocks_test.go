package tui

import (
	"context"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driving"
)

type mockChatService struct {
	text string
}

func (m *mockChatService) Answer(_ context.Context, message string) *domain.Answer {
	text := m.text
	if text == "" {
		text = "answer to " + message
	}
	return &domain.Answer{RequestID: "req-1", Text: text, State: domain.StateAnswered}
}

func (m *mockChatService) Retrieve(context.Context, string, int) (domain.QueryResult, error) {
	return nil, nil
}

func (m *mockChatService) Readiness() domain.Readiness {
	return domain.ReadinessReady
}

type mockIndexService struct{}

func (m *mockIndexService) Ensure(context.Context, bool) (*domain.CollectionHandle, error) {
	return nil, nil
}

func (m *mockIndexService) Stats(context.Context) (*domain.IndexStats, error) {
	return &domain.IndexStats{Collection: "merkuze-hospital-d384", Count: 7, Dimension: 384}, nil
}

func (m *mockIndexService) List(context.Context) ([]domain.CollectionInfo, error) {
	return nil, nil
}

func (m *mockIndexService) Reset(context.Context, string) error {
	return nil
}

type mockDocumentService struct {
	docs []domain.KnowledgeDocument
}

func (m *mockDocumentService) Add(context.Context, string, string, string) (*domain.KnowledgeDocument, error) {
	return nil, nil
}

func (m *mockDocumentService) List(context.Context) ([]domain.KnowledgeDocument, error) {
	return m.docs, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.KnowledgeDocument, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Remove(context.Context, string) error {
	return nil
}

var (
	_ driving.ChatService     = (*mockChatService)(nil)
	_ driving.IndexService    = (*mockIndexService)(nil)
	_ driving.DocumentService = (*mockDocumentService)(nil)
)
