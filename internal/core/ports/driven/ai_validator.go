package driven

import "github.com/merkuze-health/merkuze/internal/core/domain"

// AIConfigValidator checks provider settings by building the service they
// describe and pinging it. Settings with no provider pass.
type AIConfigValidator interface {
	// ValidateEmbedding fails with domain.ErrEmbeddingUnavailable.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM fails with domain.ErrLLMUnavailable.
	ValidateLLM(config *domain.LLMSettings) error
}
