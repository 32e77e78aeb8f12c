// Package gemini provides an LLM service adapter using the Google Generative
// Language API.
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

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is the default generation model.
const DefaultModel = "gemini-1.5-flash"

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the generation model (default: gemini-1.5-flash).
	Model string

	// Endpoint overrides the API endpoint. Used in tests.
	Endpoint string

	// HTTPClient overrides the transport. Used in tests.
	HTTPClient *http.Client
}

// LLMService provides generation using Gemini.
type LLMService struct {
	svc   *generativelanguage.Service
	model string
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	svc, err := googleai.NewService(ctx, cfg.APIKey, cfg.Endpoint, cfg.HTTPClient)
	if err != nil {
		return nil, err
	}
	return &LLMService{svc: svc, model: googleai.ModelPath(cfg.Model)}, nil
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: prompt}},
		}},
		GenerationConfig: &generativelanguage.GenerationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: int64(opts.MaxTokens),
		},
	}

	resp, err := s.svc.Models.GenerateContent(s.model, req).Context(ctx).Do()
	if err != nil {
		return "", googleai.ProviderError("generate", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		reason := "no candidates returned"
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			reason = "prompt blocked: " + resp.PromptFeedback.BlockReason
		}
		return "", &domain.ProviderError{Provider: googleai.ProviderName, Op: "generate", Err: fmt.Errorf("%s", reason)}
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		out.WriteString(part.Text)
	}
	return out.String(), nil
}

// ModelName returns the model resource name.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks the model exists and the key is accepted.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.svc.Models.Get(s.model).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
