// Package local provides an embedding service that mean-pools the per-token
// output of a feature-extraction model.
package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
	"github.com/merkuze-health/merkuze/internal/logger"
)

// Ensure EmbeddingService implements the interfaces.
var (
	_ driven.EmbeddingService  = (*EmbeddingService)(nil)
	_ driven.ReadinessReporter = (*EmbeddingService)(nil)
)

// Default configuration values.
const (
	DefaultDimensions  = 384 // all-MiniLM-L6-v2 hidden size
	DefaultLoadTimeout = 5 * time.Minute
)

const providerName = "local"

// Config holds configuration for the local pooling service.
type Config struct {
	// Dimensions is the model hidden size (default: 384).
	Dimensions int

	// LoadTimeout bounds the one-time model load (default: 5m).
	LoadTimeout time.Duration
}

// EmbeddingService embeds text by mean-pooling token vectors.
// The model is loaded once per process; the service is safe for concurrent
// use once loaded.
type EmbeddingService struct {
	model       driven.TokenModel
	dimensions  int
	loadTimeout time.Duration

	startOnce sync.Once
	done      chan struct{}

	mu      sync.RWMutex
	state   domain.Readiness
	loadErr error
}

// NewEmbeddingService creates a pooling service over model.
// Loading starts on Start, Warmup, Ping or the first Embed call.
func NewEmbeddingService(cfg Config, model driven.TokenModel) *EmbeddingService {
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.LoadTimeout == 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	return &EmbeddingService{
		model:       model,
		dimensions:  cfg.Dimensions,
		loadTimeout: cfg.LoadTimeout,
		done:        make(chan struct{}),
		state:       domain.ReadinessNotStarted,
	}
}

// Start begins loading the model in the background. Subsequent calls are no-ops.
func (s *EmbeddingService) Start() {
	s.startOnce.Do(func() {
		s.setState(domain.ReadinessLoading, nil)
		go s.load()
	})
}

func (s *EmbeddingService) load() {
	defer close(s.done)

	ctx, cancel := context.WithTimeout(context.Background(), s.loadTimeout)
	defer cancel()

	logger.Debug("loading token model %s", s.model.Name())
	if err := s.model.Load(ctx); err != nil {
		logger.Warn("token model %s failed to load: %v", s.model.Name(), err)
		s.setState(domain.ReadinessFailed, err)
		return
	}
	logger.Debug("token model %s ready", s.model.Name())
	s.setState(domain.ReadinessReady, nil)
}

func (s *EmbeddingService) setState(state domain.Readiness, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.loadErr = err
}

// Ready returns the current load state.
func (s *EmbeddingService) Ready() domain.Readiness {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Warmup starts loading and blocks until the model is ready, has failed, or
// ctx is done.
func (s *EmbeddingService) Warmup(ctx context.Context) error {
	s.Start()
	select {
	case <-s.done:
		return s.readyErr()
	case <-ctx.Done():
		return fmt.Errorf("%s: %w: %w", s.model.Name(), domain.ErrNotReady, ctx.Err())
	}
}

// readyErr maps the load state to the error callers should see.
func (s *EmbeddingService) readyErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.state {
	case domain.ReadinessReady:
		return nil
	case domain.ReadinessFailed:
		return &domain.ProviderError{Provider: providerName, Op: "load", Err: s.loadErr}
	default:
		return fmt.Errorf("%s: %w", s.model.Name(), domain.ErrNotReady)
	}
}

// Embed generates a pooled embedding. It fails with domain.ErrNotReady while
// the model is loading.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &domain.EmptyInputError{What: "text"}
	}

	s.Start()
	if err := s.readyErr(); err != nil {
		return nil, err
	}

	tokens, err := s.model.EmbedTokens(ctx, text)
	if err != nil {
		var pe *domain.ProviderError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, &domain.ProviderError{Provider: providerName, Op: "embed", Retryable: true, Err: err}
	}

	vec, err := MeanPool(tokens)
	if err != nil {
		return nil, &domain.ProviderError{Provider: providerName, Op: "pool", Err: err}
	}
	if len(vec) != s.dimensions {
		return nil, &domain.DimensionMismatchError{Expected: s.dimensions, Actual: len(vec)}
	}
	return vec, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the token model identifier.
func (s *EmbeddingService) ModelName() string {
	return s.model.Name()
}

// Ping waits for the model to finish loading.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.Warmup(ctx)
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
