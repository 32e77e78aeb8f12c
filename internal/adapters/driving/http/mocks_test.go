package http

import (
	"context"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer    *domain.Answer
	readiness domain.Readiness
	messages  []string
}

func (m *mockChatService) Answer(_ context.Context, message string) *domain.Answer {
	m.messages = append(m.messages, message)
	return m.answer
}

func (m *mockChatService) Retrieve(_ context.Context, _ string, _ int) (domain.QueryResult, error) {
	return nil, nil
}

func (m *mockChatService) Readiness() domain.Readiness {
	if m.readiness == "" {
		return domain.ReadinessReady
	}
	return m.readiness
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	stats *domain.IndexStats
	err   error
}

func (m *mockIndexService) Ensure(_ context.Context, _ bool) (*domain.CollectionHandle, error) {
	return nil, m.err
}

func (m *mockIndexService) Stats(_ context.Context) (*domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexService) List(_ context.Context) ([]domain.CollectionInfo, error) {
	return nil, m.err
}

func (m *mockIndexService) Reset(_ context.Context, _ string) error {
	return m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.KnowledgeDocument
	err       error
}

func (m *mockDocumentService) Add(_ context.Context, _, _, _ string) (*domain.KnowledgeDocument, error) {
	return nil, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.KnowledgeDocument, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.KnowledgeDocument, error) {
	return nil, m.err
}

func (m *mockDocumentService) Remove(_ context.Context, _ string) error {
	return m.err
}
