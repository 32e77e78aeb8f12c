// Package openai embeds text with the OpenAI embeddings API or a
// compatible endpoint.
package openai

import (
	"cmp"
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/merkuze-health/merkuze/internal/adapters/driven/openaiclient"
	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const DefaultModel = string(openai.SmallEmbedding3)

// knownDimensions are the native sizes; other models default to 1536.
var knownDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

type Config struct {
	APIKey  string // required
	BaseURL string // Azure or a compatible API
	Model   string
	Timeout time.Duration

	// Dimensions asks text-embedding-3-* models for shorter vectors. For
	// other models it only declares the size they return.
	Dimensions int
}

type EmbeddingService struct {
	client     *openai.Client
	model      string
	dimensions int
	shorten    bool
}

func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	client, err := openaiclient.New(cfg.APIKey, cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	model := cmp.Or(cfg.Model, DefaultModel)
	dims := cmp.Or(cfg.Dimensions, knownDimensions[model], 1536)
	return &EmbeddingService{
		client:     client,
		model:      model,
		dimensions: dims,
		shorten:    cfg.Dimensions > 0 && strings.HasPrefix(model, "text-embedding-3-"),
	}, nil
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &domain.EmptyInputError{What: "text"}
	}

	req := openai.EmbeddingRequest{Input: []string{text}, Model: openai.EmbeddingModel(s.model)}
	if s.shorten {
		req.Dimensions = s.dimensions
	}
	resp, err := s.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, openaiclient.ProviderError("embed", err)
	}
	if len(resp.Data) == 0 {
		return nil, openaiclient.Malformed("embed", "embedding")
	}
	vec := resp.Data[0].Embedding
	if len(vec) != s.dimensions {
		return nil, &domain.DimensionMismatchError{Expected: s.dimensions, Actual: len(vec)}
	}
	return vec, nil
}

func (s *EmbeddingService) Dimensions() int { return s.dimensions }

func (s *EmbeddingService) ModelName() string { return s.model }

func (s *EmbeddingService) Ping(ctx context.Context) error { return openaiclient.Ping(ctx, s.client) }

func (s *EmbeddingService) Close() error { return nil }
