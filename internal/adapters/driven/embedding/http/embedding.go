// Package http embeds text through any endpoint that takes {"text": "..."}
// and answers {"vector": [...]}, such as a hospital's own inference gateway.
package http

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/merkuze-health/merkuze/internal/adapters/driven/jsonhttp"
	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultTimeout bounds one embedding request.
const DefaultTimeout = 30 * time.Second

// Config describes the endpoint. URL and Dimensions are required; Model
// only labels the collection and defaults to URL.
type Config struct {
	URL        string
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// EmbeddingService implements driven.EmbeddingService against a generic endpoint.
type EmbeddingService struct {
	http       *jsonhttp.Client
	url        string
	model      string
	dimensions int
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Vector []float32 `json:"vector"`
}

// NewEmbeddingService validates cfg and returns a service sending APIKey as a
// bearer token when set.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	switch {
	case cfg.URL == "":
		return nil, fmt.Errorf("http embedding: %w: URL is required", domain.ErrInvalidInput)
	case cfg.Dimensions <= 0:
		return nil, fmt.Errorf("http embedding: %w: dimensions must be set", domain.ErrInvalidInput)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Model == "" {
		cfg.Model = cfg.URL
	}
	return &EmbeddingService{
		http:       jsonhttp.New("http", cfg.Timeout).WithBearer(cfg.APIKey),
		url:        cfg.URL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed returns the vector for text. A vector of the wrong length is a
// dimension mismatch, an empty one a provider error.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &domain.EmptyInputError{What: "text"}
	}
	var out embedResponse
	if err := s.http.Post(ctx, "embed", s.url, embedRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	switch len(out.Vector) {
	case 0:
		return nil, s.http.Fail("embed", errors.New("response has no vector"))
	case s.dimensions:
		return out.Vector, nil
	default:
		return nil, &domain.DimensionMismatchError{Expected: s.dimensions, Actual: len(out.Vector)}
	}
}

// Dimensions returns the configured vector size.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// ModelName returns the model label, or the URL when none was set.
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping embeds a probe string; generic endpoints have no health route.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("http embedding: ping: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *EmbeddingService) Close() error { return nil }
