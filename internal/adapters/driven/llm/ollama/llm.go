// Package ollama generates answers with a model served by a local Ollama daemon.
package ollama

import (
	"context"
	"time"

	"github.com/merkuze-health/merkuze/internal/adapters/driven/ollamaapi"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

// Defaults for an unset LLMConfig.
const (
	DefaultBaseURL    = ollamaapi.DefaultBaseURL
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig selects the daemon and model. Local models on CPU are slow, hence
// the generous default timeout.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService implements driven.LLMService on a local Ollama daemon.
type LLMService struct {
	daemon *ollamaapi.Daemon
	model  string
}

// NewLLMService fills in defaults; it does not contact the daemon.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return &LLMService{daemon: ollamaapi.New(cfg.BaseURL, cfg.Timeout), model: cfg.Model}
}

// Generate returns the full, non-streamed completion for prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return s.daemon.Generate(ctx, ollamaapi.GenerateRequest{
		Model:   s.model,
		Prompt:  prompt,
		Options: &ollamaapi.Options{NumPredict: opts.MaxTokens, Temperature: opts.Temperature},
	})
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string { return s.model }

// Ping fails when the daemon is down or the model has not been pulled.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.daemon.RequireModel(ctx, s.model)
}

// Close is a no-op.
func (s *LLMService) Close() error { return nil }
