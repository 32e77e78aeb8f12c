// Package ollama embeds text with a model served by a local Ollama daemon.
package ollama

import (
	"context"
	"strings"
	"time"

	"github.com/merkuze-health/merkuze/internal/adapters/driven/ollamaapi"
	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Defaults for an unset Config.
const (
	DefaultBaseURL = ollamaapi.DefaultBaseURL
	DefaultModel   = "nomic-embed-text"
	DefaultTimeout = 30 * time.Second
)

// Config selects the daemon and model. Dimensions defaults to the known size
// of Model, and to 768 for models Merkuze does not know.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int
}

// EmbeddingService sends one text per /api/embed request.
type EmbeddingService struct {
	daemon     *ollamaapi.Daemon
	model      string
	dimensions int
}

// NewEmbeddingService fills in defaults; it does not contact the daemon.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = domain.EmbeddingDimensions()[cfg.Model]
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 768
	}
	return &EmbeddingService{
		daemon:     ollamaapi.New(cfg.BaseURL, cfg.Timeout),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Embed returns the vector for text, checked against Dimensions.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &domain.EmptyInputError{What: "text"}
	}
	vecs, err := s.daemon.Embed(ctx, s.model, text)
	if err != nil {
		return nil, err
	}
	if len(vecs[0]) != s.dimensions {
		return nil, &domain.DimensionMismatchError{Expected: s.dimensions, Actual: len(vecs[0])}
	}
	return vecs[0], nil
}

// Dimensions returns the vector size of the model.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// ModelName returns the configured model.
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping checks that the daemon answers and that the model has been pulled.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.daemon.RequireModel(ctx, s.model)
}

// Close is a no-op.
func (s *EmbeddingService) Close() error { return nil }
