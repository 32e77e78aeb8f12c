package mcp

import (
	"context"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer    *domain.Answer
	matches   domain.QueryResult
	err       error
	lastQuery string
	lastTopK  int
}

func (m *mockChatService) Answer(_ context.Context, message string) *domain.Answer {
	m.lastQuery = message
	return m.answer
}

func (m *mockChatService) Retrieve(_ context.Context, query string, topK int) (domain.QueryResult, error) {
	m.lastQuery = query
	m.lastTopK = topK
	return m.matches, m.err
}

func (m *mockChatService) Readiness() domain.Readiness {
	return domain.ReadinessReady
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	stats       *domain.IndexStats
	collections []domain.CollectionInfo
	err         error
}

func (m *mockIndexService) Ensure(_ context.Context, _ bool) (*domain.CollectionHandle, error) {
	return nil, m.err
}

func (m *mockIndexService) Stats(_ context.Context) (*domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexService) List(_ context.Context) ([]domain.CollectionInfo, error) {
	return m.collections, m.err
}

func (m *mockIndexService) Reset(_ context.Context, _ string) error {
	return m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.KnowledgeDocument
	document  *domain.KnowledgeDocument
	err       error
}

func (m *mockDocumentService) Add(_ context.Context, _, _, _ string) (*domain.KnowledgeDocument, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.KnowledgeDocument, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.KnowledgeDocument, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Remove(_ context.Context, _ string) error {
	return m.err
}
