package cli

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driving"
)

// mockChatService answers with a fixed text and two sources.
type mockChatService struct {
	questions []string
	retrieved []string
	topK      int
	err       error
}

func (m *mockChatService) Answer(_ context.Context, message string) *domain.Answer {
	m.questions = append(m.questions, message)
	return &domain.Answer{
		RequestID: "req-1",
		Text:      "Cardiology is on level 3.",
		State:     domain.StateAnswered,
		Matches: []domain.Match{
			{ID: "dept-0", Score: 0.91, Text: "Department: Cardiology. Location: Level 3."},
			{ID: "hospital_info", Score: 0.72, Text: "Name: General Hospital."},
		},
	}
}

func (m *mockChatService) Retrieve(_ context.Context, query string, topK int) (domain.QueryResult, error) {
	m.retrieved = append(m.retrieved, query)
	m.topK = topK
	if m.err != nil {
		return nil, m.err
	}
	return domain.QueryResult{
		{ID: "dept-0", Score: 0.91, Text: "Department: Cardiology.\n  Location: Level 3."},
		{ID: "dept-1", Score: 0.55, Text: "Department: Radiology."},
	}, nil
}

func (m *mockChatService) Readiness() domain.Readiness {
	return domain.ReadinessReady
}

// mockIndexService reports one collection.
type mockIndexService struct {
	stats    *domain.IndexStats
	reset    []string
	retire   bool
	resetErr error
	statsErr error
}

func (m *mockIndexService) Ensure(_ context.Context, retireStale bool) (*domain.CollectionHandle, error) {
	m.retire = retireStale
	h := &domain.CollectionHandle{
		Logical:   domain.DefaultCollection,
		Name:      "merkuze-hospital-d384",
		Dimension: 384,
		Created:   true,
	}
	if retireStale {
		h.Retired = []string{"merkuze-hospital-d768"}
	}
	return h, nil
}

func (m *mockIndexService) Stats(_ context.Context) (*domain.IndexStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	if m.stats != nil {
		return m.stats, nil
	}
	return &domain.IndexStats{Collection: "merkuze-hospital-d384", Count: 12, Dimension: 384}, nil
}

func (m *mockIndexService) List(_ context.Context) ([]domain.CollectionInfo, error) {
	return []domain.CollectionInfo{
		{Name: "merkuze-hospital-d384", Dimension: 384, Metric: domain.MetricCosine},
		{Name: "merkuze-hospital-d768", Dimension: 768, Metric: domain.MetricCosine},
	}, nil
}

func (m *mockIndexService) Reset(_ context.Context, name string) error {
	if m.resetErr != nil {
		return m.resetErr
	}
	m.reset = append(m.reset, name)
	return nil
}

// mockIngestionService records the chunks it is given.
type mockIngestionService struct {
	chunks []domain.Chunk
	opts   driving.IngestOptions
	fail   map[string]string
	err    error
	runs   []domain.IngestionRun
}

func (m *mockIngestionService) Ingest(
	_ context.Context,
	chunks []domain.Chunk,
	opts driving.IngestOptions,
) (*domain.IngestionReport, error) {
	m.chunks = chunks
	m.opts = opts

	report := &domain.IngestionReport{
		Collection: "merkuze-hospital-d384",
		Succeeded:  []string{},
		Failed:     []domain.ChunkFailure{},
		StartedAt:  time.Now(),
	}
	if m.err != nil {
		return report, m.err
	}
	for i, c := range chunks {
		if reason, ok := m.fail[c.ID]; ok {
			report.Failed = append(report.Failed, domain.ChunkFailure{ID: c.ID, Reason: reason})
		} else {
			report.Succeeded = append(report.Succeeded, c.ID)
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(chunks), c.ID)
		}
	}
	report.FinishedAt = time.Now()
	return report, nil
}

func (m *mockIngestionService) IngestDocument(
	ctx context.Context,
	_ []byte,
	opts driving.IngestOptions,
) (*domain.IngestionReport, error) {
	return m.Ingest(ctx, nil, opts)
}

func (m *mockIngestionService) History(_ context.Context, limit int) ([]domain.IngestionRun, error) {
	if len(m.runs) > limit {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

// mockDocumentService keeps documents in insertion order.
type mockDocumentService struct {
	docs []domain.KnowledgeDocument
}

func (m *mockDocumentService) Add(_ context.Context, title, filename, content string) (*domain.KnowledgeDocument, error) {
	doc := domain.KnowledgeDocument{
		ID:         "doc-new",
		Title:      title,
		Filename:   filename,
		Content:    content,
		UploadedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	m.docs = append(m.docs, doc)
	return &doc, nil
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.KnowledgeDocument, error) {
	return m.docs, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.KnowledgeDocument, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			doc := m.docs[i]
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Remove(_ context.Context, id string) error {
	for i := range m.docs {
		if m.docs[i].ID == id {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// mockSettingsService stores Set calls.
type mockSettingsService struct {
	settings    domain.AppSettings
	set         map[string]string
	embedding   domain.AIProvider
	embedModel  string
	embedKey    string
	llm         domain.AIProvider
	llmModel    string
	validateErr error
	pingErr     error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		set:      make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if key == "bogus.key" {
		return domain.ErrInvalidInput
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embedding = provider
	m.embedModel = model
	m.embedKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, _ string) error {
	m.llm = provider
	m.llmModel = model
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.pingErr }

// mockExtractor splits input into one chunk per non-empty line.
type mockExtractor struct{}

func (mockExtractor) Extract(data []byte) ([]domain.Chunk, error) {
	if bytes.HasPrefix(data, []byte("bad")) {
		return nil, errors.New("schema error: root must be an object")
	}
	var chunks []domain.Chunk
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		id, text, _ := bytes.Cut(line, []byte("="))
		chunks = append(chunks, domain.Chunk{ID: string(id), Text: string(text)})
	}
	return chunks, nil
}

// mockPromptWatcher emits the configured names then closes.
type mockPromptWatcher struct {
	names []string
	err   error
}

func (m *mockPromptWatcher) Watch(_ context.Context) (<-chan string, error) {
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan string, len(m.names))
	for _, n := range m.names {
		ch <- n
	}
	close(ch)
	return ch, nil
}
