package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
	"github.com/merkuze-health/merkuze/internal/core/ports/driving"
	"github.com/merkuze-health/merkuze/internal/logger"
	"github.com/merkuze-health/merkuze/internal/ratelimit"
	"github.com/merkuze-health/merkuze/internal/retry"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// ChunkExtractor turns a structured knowledge-base document into chunks.
type ChunkExtractor interface {
	Extract(data []byte) ([]domain.Chunk, error)
}

// IngestionConfig tunes throttling and retries.
type IngestionConfig struct {
	// Collection is the logical collection name.
	Collection string

	// RequestsPerSecond throttles embedding calls. Zero means unlimited.
	RequestsPerSecond float64

	// MaxAttempts bounds tries per chunk for retryable failures.
	MaxAttempts int

	// RetryBaseDelay is the first backoff between attempts.
	RetryBaseDelay time.Duration

	// EmbedTimeout bounds each embedding call.
	EmbedTimeout time.Duration

	// RetireStale deletes collections of other dimensions after migration.
	RetireStale bool
}

// IngestionConfigFromSettings maps application settings to an IngestionConfig.
func IngestionConfigFromSettings(s *domain.AppSettings) IngestionConfig {
	return IngestionConfig{
		Collection:        s.VectorStore.Collection,
		RequestsPerSecond: s.Ingest.RequestsPerSecond,
		MaxAttempts:       s.Ingest.MaxAttempts,
		EmbedTimeout:      s.Ingest.EmbedTimeout,
		RetireStale:       s.Ingest.RetireStale,
	}
}

// IngestionService embeds chunks one at a time and upserts them into the
// vector index. One chunk's failure never stops the run.
type IngestionService struct {
	index     *VectorIndex
	embedder  driven.EmbeddingService
	extractor ChunkExtractor
	limiter   *ratelimit.Limiter
	cfg       IngestionConfig
	history   driven.IngestionHistory
}

// IngestionOption configures an IngestionService.
type IngestionOption func(*IngestionService)

// WithHistory records a summary of every completed run.
func WithHistory(h driven.IngestionHistory) IngestionOption {
	return func(s *IngestionService) {
		s.history = h
	}
}

// NewIngestionService creates an ingestion service.
func NewIngestionService(
	index *VectorIndex,
	embedder driven.EmbeddingService,
	extractor ChunkExtractor,
	cfg IngestionConfig,
	opts ...IngestionOption,
) *IngestionService {
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 30 * time.Second
	}
	s := &IngestionService{
		index:     index,
		embedder:  embedder,
		extractor: extractor,
		limiter:   ratelimit.New(cfg.RequestsPerSecond, 1),
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestDocument extracts chunks from data and ingests them. Schema errors
// abort before anything is written.
func (s *IngestionService) IngestDocument(
	ctx context.Context,
	data []byte,
	opts driving.IngestOptions,
) (*domain.IngestionReport, error) {
	if s.extractor == nil {
		return nil, fmt.Errorf("no extractor configured: %w", domain.ErrInvalidInput)
	}
	chunks, err := s.extractor.Extract(data)
	if err != nil {
		return nil, err
	}
	return s.Ingest(ctx, chunks, opts)
}

// Ingest embeds and upserts chunks in order. It returns an error only if the
// collection cannot be ensured or ctx ends; the report then holds whatever
// completed.
func (s *IngestionService) Ingest(
	ctx context.Context,
	chunks []domain.Chunk,
	opts driving.IngestOptions,
) (*domain.IngestionReport, error) {
	logger.Section("Ingestion")

	report := &domain.IngestionReport{
		Succeeded: []string{},
		Failed:    []domain.ChunkFailure{},
		StartedAt: time.Now(),
	}
	defer func() { report.FinishedAt = time.Now() }()

	if s.embedder == nil {
		return report, domain.ErrEmbeddingUnavailable
	}

	if w, ok := s.embedder.(driven.Warmer); ok {
		logger.Debug("Waiting for embedding model %s", s.embedder.ModelName())
		if err := w.Warmup(ctx); err != nil {
			return report, fmt.Errorf("embedding model: %w", err)
		}
	}

	logical := opts.Collection
	if logical == "" {
		logical = s.cfg.Collection
	}
	handle, err := s.index.EnsureCollection(ctx, logical, s.embedder.Dimensions(), opts.RetireStale || s.cfg.RetireStale)
	if err != nil {
		return report, fmt.Errorf("ensure collection: %w", err)
	}
	report.Collection = handle.Name
	logger.Debug("Ingesting %d chunks into %s (dimension %d)", len(chunks), handle.Name, handle.Dimension)

	seen := make(map[string]bool, len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		err := s.ingestChunk(ctx, handle, chunk, seen)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				report.Failed = append(report.Failed, domain.ChunkFailure{ID: chunk.ID, Reason: err.Error()})
				return report, ctxErr
			}
			logger.Warn("Chunk %s failed: %v", chunk.ID, err)
			report.Failed = append(report.Failed, domain.ChunkFailure{ID: chunk.ID, Reason: err.Error()})
		} else {
			report.Succeeded = append(report.Succeeded, chunk.ID)
		}

		if opts.Progress != nil {
			opts.Progress(i+1, len(chunks), chunk.ID)
		}
	}

	logger.Info("Ingested %d/%d chunks into %s", len(report.Succeeded), len(chunks), handle.Name)
	s.record(ctx, report)
	return report, nil
}

// History returns up to limit recorded runs, newest first.
func (s *IngestionService) History(ctx context.Context, limit int) ([]domain.IngestionRun, error) {
	if s.history == nil {
		return []domain.IngestionRun{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	return s.history.Recent(ctx, limit)
}

// record stores the run summary. A history failure never fails the run.
func (s *IngestionService) record(ctx context.Context, report *domain.IngestionReport) {
	if s.history == nil {
		return
	}
	run := domain.RunFromReport(report)
	run.FinishedAt = time.Now()
	if err := s.history.Record(ctx, run); err != nil {
		logger.Warn("Failed to record ingestion run: %v", err)
	}
}

// ingestChunk embeds and upserts one chunk, retrying transient failures.
func (s *IngestionService) ingestChunk(
	ctx context.Context,
	handle *domain.CollectionHandle,
	chunk domain.Chunk,
	seen map[string]bool,
) error {
	if chunk.ID == "" {
		return &domain.EmptyInputError{What: "chunk id"}
	}
	if seen[chunk.ID] {
		return fmt.Errorf("duplicate chunk id %q: %w", chunk.ID, domain.ErrInvalidInput)
	}
	seen[chunk.ID] = true

	if strings.TrimSpace(chunk.Text) == "" {
		return &domain.EmptyInputError{What: "chunk " + chunk.ID}
	}

	policy := retry.Policy{
		MaxAttempts: s.cfg.MaxAttempts,
		BaseDelay:   s.cfg.RetryBaseDelay,
		Retryable:   domain.IsRetryable,
	}
	attempts, err := retry.Do(ctx, policy, func(ctx context.Context) error {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		vector, err := s.embed(ctx, chunk.Text)
		if err != nil {
			if errors.Is(err, domain.ErrRateLimited) {
				s.limiter.RecordRateLimit(0)
			}
			return err
		}
		return s.index.Upsert(ctx, handle, []domain.IndexedEntry{{
			ID:       chunk.ID,
			Vector:   vector,
			Metadata: map[string]string{domain.MetadataText: chunk.Text},
		}})
	})
	if attempts > 1 {
		logger.Debug("Chunk %s took %d attempts", chunk.ID, attempts)
	}
	return err
}

func (s *IngestionService) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.EmbedTimeout)
	defer cancel()
	return s.embedder.Embed(ctx, text)
}
