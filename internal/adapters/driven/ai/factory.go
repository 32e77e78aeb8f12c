// Package ai builds the embedding and generation adapters named in settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	geminiembed "github.com/merkuze-health/merkuze/internal/adapters/driven/embedding/gemini"
	httpembed "github.com/merkuze-health/merkuze/internal/adapters/driven/embedding/http"
	"github.com/merkuze-health/merkuze/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/merkuze-health/merkuze/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/merkuze-health/merkuze/internal/adapters/driven/embedding/openai"
	"github.com/merkuze-health/merkuze/internal/adapters/driven/embedding/tei"
	anthropicllm "github.com/merkuze-health/merkuze/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/merkuze-health/merkuze/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/merkuze-health/merkuze/internal/adapters/driven/llm/ollama"
	openaillm "github.com/merkuze-health/merkuze/internal/adapters/driven/llm/openai"
	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

// pingTimeout bounds the reachability check made after building a service.
const pingTimeout = 5 * time.Second

var embeddingBuilders = map[domain.AIProvider]func(*domain.EmbeddingSettings) (driven.EmbeddingService, error){
	domain.AIProviderLocal: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		model := tei.NewModel(tei.Config{BaseURL: s.BaseURL, Model: s.Model})
		return local.NewEmbeddingService(local.Config{Dimensions: s.ResolveDimensions()}, model), nil
	},
	domain.AIProviderOllama: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: s.BaseURL, Model: s.Model, Dimensions: s.ResolveDimensions(),
		}), nil
	},
	domain.AIProviderOpenAI: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model, Dimensions: s.Dimensions,
		})
	},
	domain.AIProviderGemini: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return geminiembed.NewEmbeddingService(context.Background(), geminiembed.Config{
			APIKey: s.APIKey, Model: s.Model, Dimensions: s.ResolveDimensions(), Endpoint: s.BaseURL,
		})
	},
	domain.AIProviderHTTP: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return httpembed.NewEmbeddingService(httpembed.Config{
			URL: s.BaseURL, APIKey: s.APIKey, Model: s.Model, Dimensions: s.ResolveDimensions(),
		})
	},
}

var llmBuilders = map[domain.AIProvider]func(*domain.LLMSettings) (driven.LLMService, error){
	domain.AIProviderOllama: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return ollamallm.NewLLMService(ollamallm.LLMConfig{BaseURL: s.BaseURL, Model: s.Model}), nil
	},
	domain.AIProviderOpenAI: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return openaillm.NewLLMService(openaillm.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
	domain.AIProviderGemini: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return geminillm.NewLLMService(context.Background(), geminillm.Config{
			APIKey: s.APIKey, Model: s.Model, Endpoint: s.BaseURL,
		})
	},
	domain.AIProviderAnthropic: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return anthropicllm.NewLLMService(anthropicllm.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
}

// CreateEmbeddingService builds the embedder selected by settings without
// contacting it.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		var provider domain.AIProvider
		if settings != nil {
			provider = settings.Provider
		}
		return nil, fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrInvalidInput, provider)
	}
	build, ok := embeddingBuilders[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
	return build(settings)
}

// CreateLLMService builds the generator selected by settings without
// contacting it.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: LLM provider is not configured", domain.ErrLLMUnavailable)
	}
	build, ok := llmBuilders[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: LLM provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
	return build(settings)
}

// CreateAndValidateEmbeddingService builds the embedder and pings it. A
// local model that is still loading is returned; Embed reports
// domain.ErrNotReady until it finishes.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	const fix = "Run 'merkuze settings embedding' to fix"
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: no embedding provider configured. %s", domain.ErrEmbeddingUnavailable, fix)
	}
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fix)
	}
	if err := probe(svc.Ping, pingTimeout); err != nil && !errors.Is(err, domain.ErrNotReady) {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, fix)
	}
	return svc, nil
}

// CreateAndValidateLLMService builds the generator and pings it. No
// provider is not an error: the answer pipeline falls back without one.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	const fix = "Run 'merkuze settings llm' to fix"
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fix)
	}
	if err := probe(svc.Ping, pingTimeout); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, fix)
	}
	return svc, nil
}

func probe(ping func(context.Context) error, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = pingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return ping(ctx)
}
