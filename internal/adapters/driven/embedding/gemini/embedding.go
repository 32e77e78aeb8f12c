// Package gemini provides an embedding service adapter using the Google
// Generative Language API.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/generativelanguage/v1beta"

	"github.com/merkuze-health/merkuze/internal/adapters/driven/googleai"
	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "text-embedding-004"
	DefaultDimensions = 768
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the embedding model (default: text-embedding-004).
	Model string

	// Dimensions is the embedding vector size (default: 768).
	Dimensions int

	// Endpoint overrides the API endpoint. Used in tests.
	Endpoint string

	// HTTPClient overrides the transport. Used in tests.
	HTTPClient *http.Client
}

// EmbeddingService generates embeddings with Gemini.
type EmbeddingService struct {
	svc        *generativelanguage.Service
	model      string
	dimensions int
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	svc, err := googleai.NewService(ctx, cfg.APIKey, cfg.Endpoint, cfg.HTTPClient)
	if err != nil {
		return nil, err
	}

	return &EmbeddingService{
		svc:        svc,
		model:      googleai.ModelPath(cfg.Model),
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed returns the provider vector verbatim, converted to float32.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &domain.EmptyInputError{What: "text"}
	}

	req := &generativelanguage.EmbedContentRequest{
		Content: &generativelanguage.Content{
			Parts: []*generativelanguage.Part{{Text: text}},
		},
	}
	resp, err := s.svc.Models.EmbedContent(s.model, req).Context(ctx).Do()
	if err != nil {
		return nil, googleai.ProviderError("embed", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, &domain.ProviderError{
			Provider: googleai.ProviderName,
			Op:       "embed",
			Err:      fmt.Errorf("no embedding returned for %s", s.model),
		}
	}

	values := resp.Embedding.Values
	if len(values) != s.dimensions {
		return nil, &domain.DimensionMismatchError{Expected: s.dimensions, Actual: len(values)}
	}

	embedding := make([]float32, len(values))
	for i, v := range values {
		embedding[i] = float32(v)
	}
	return embedding, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the model resource name.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks the model exists and the key is accepted.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.svc.Models.Get(s.model).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
