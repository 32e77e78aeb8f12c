package services

import (
	"context"
	"strings"
	"sync"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

// fakeEmbedder implements driven.EmbeddingService. It maps text to a
// deterministic vector unless a fixed vector or error is configured.
type fakeEmbedder struct {
	mu       sync.Mutex
	dims     int
	vector   []float32
	err      error
	errs     []error // consumed one per call before err
	ready    domain.Readiness
	block    bool
	calls    int
	lastText string
}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.lastText = text
	var next error
	if len(f.errs) > 0 {
		next, f.errs = f.errs[0], f.errs[1:]
	}
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, &domain.ProviderError{Provider: "fake", Op: "embed", Retryable: true, Err: ctx.Err()}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &domain.EmptyInputError{What: "text"}
	}
	if next != nil {
		return nil, next
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.vector != nil {
		return f.vector, nil
	}
	return textVector(text, f.Dimensions()), nil
}

func (f *fakeEmbedder) Dimensions() int {
	if f.dims > 0 {
		return f.dims
	}
	return 4
}

func (f *fakeEmbedder) ModelName() string { return "fake-embed" }

func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }

func (f *fakeEmbedder) Close() error { return nil }

func (f *fakeEmbedder) Ready() domain.Readiness {
	if f.ready == "" {
		return domain.ReadinessReady
	}
	return f.ready
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// textVector spreads the bytes of text over dims buckets so that distinct
// texts get distinct directions and identical texts get identical vectors.
func textVector(text string, dims int) []float32 {
	v := make([]float32, dims)
	for i := 0; i < len(text); i++ {
		v[i%dims] += float32(text[i])
	}
	v[len(text)%dims] += 1
	return v
}

// fakeLLM implements driven.LLMService.
type fakeLLM struct {
	mu         sync.Mutex
	reply      string
	err        error
	block      bool
	lastPrompt string
	lastOpts   driven.GenerateOptions
	calls      int
}

var _ driven.LLMService = (*fakeLLM)(nil)

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastPrompt = prompt
	f.lastOpts = opts
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", &domain.ProviderError{Provider: "fake", Op: "generate", Retryable: true, Err: ctx.Err()}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) ModelName() string { return "fake-llm" }

func (f *fakeLLM) Ping(_ context.Context) error { return nil }

func (f *fakeLLM) Close() error { return nil }

// fakePrompts implements driven.PromptStore.
type fakePrompts struct {
	prompts map[string]string
	reloads int
}

func (f *fakePrompts) Load(name string) (string, error) {
	p, ok := f.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePrompts) Reload() { f.reloads++ }

// fakeReporter implements driven.ErrorReporter.
type fakeReporter struct {
	mu      sync.Mutex
	reports []report
}

type report struct {
	requestID string
	state     domain.AnswerState
	err       error
}

func (f *fakeReporter) Report(_ context.Context, requestID string, state domain.AnswerState, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, report{requestID: requestID, state: state, err: err})
}

// flakyStore wraps a VectorStore and injects failures.
type flakyStore struct {
	driven.VectorStore
	notReady    int // DescribeCollection calls that report not ready
	describeErr error
	deleteErr   error
	upsertErrs  []error
	listErr     error
	describes   int
	upserts     int
}

func (s *flakyStore) ListCollections(ctx context.Context) ([]domain.CollectionInfo, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.VectorStore.ListCollections(ctx)
}

func (s *flakyStore) DescribeCollection(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	s.describes++
	if s.describeErr != nil {
		return nil, s.describeErr
	}
	if s.describes <= s.notReady {
		return nil, domain.ErrNotReady
	}
	return s.VectorStore.DescribeCollection(ctx, name)
}

func (s *flakyStore) DeleteCollection(ctx context.Context, name string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.VectorStore.DeleteCollection(ctx, name)
}

func (s *flakyStore) Upsert(ctx context.Context, collection string, entries []domain.IndexedEntry) error {
	s.upserts++
	if len(s.upsertErrs) > 0 {
		err := s.upsertErrs[0]
		s.upsertErrs = s.upsertErrs[1:]
		if err != nil {
			return err
		}
	}
	return s.VectorStore.Upsert(ctx, collection, entries)
}
