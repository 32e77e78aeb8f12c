package ai

import (
	"errors"
	"fmt"
	"time"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings before the settings service
// saves them: it builds the service the settings describe and pings it.
// Unset providers pass, since both are optional until a command needs them.
type ConfigValidator struct {
	// Timeout bounds each ping. Zero means pingTimeout.
	Timeout time.Duration
}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{Timeout: pingTimeout}
}

// ValidateEmbedding reports an unusable embedding configuration as
// domain.ErrEmbeddingUnavailable. A local model that is still loading passes.
func (v *ConfigValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	if cfg == nil || !cfg.IsConfigured() {
		return nil
	}
	svc, err := CreateEmbeddingService(cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	defer svc.Close()

	err = probe(svc.Ping, v.Timeout)
	if err == nil || errors.Is(err, domain.ErrNotReady) {
		return nil
	}
	return fmt.Errorf("%w: %s model %q: %w", domain.ErrEmbeddingUnavailable, cfg.Provider, svc.ModelName(), err)
}

// ValidateLLM reports an unusable generation configuration as domain.ErrLLMUnavailable.
func (v *ConfigValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	if cfg == nil || !cfg.IsConfigured() {
		return nil
	}
	svc, err := CreateLLMService(cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	defer svc.Close()

	if err := probe(svc.Ping, v.Timeout); err != nil {
		return fmt.Errorf("%w: %s model %q: %w", domain.ErrLLMUnavailable, cfg.Provider, svc.ModelName(), err)
	}
	return nil
}
