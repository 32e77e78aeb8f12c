// Package openaiclient builds go-openai clients and classifies their errors
// for the OpenAI embedding and generation adapters.
package openaiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// ProviderName identifies OpenAI in provider errors.
const ProviderName = "openai"

// DefaultTimeout is the per-request timeout.
const DefaultTimeout = 60 * time.Second

// New creates an OpenAI client. baseURL may point at an Azure or compatible API.
func New(apiKey, baseURL string, timeout time.Duration) (*openai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w: API key is required", domain.ErrInvalidInput)
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(cfg), nil
}

// ProviderError converts a client failure into a domain provider error.
// Rate limits, server errors and transport failures are retryable.
func ProviderError(op string, err error) error {
	code := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		code = reqErr.HTTPStatusCode
	}
	retryable := retryableStatus(code)
	if code == http.StatusTooManyRequests {
		err = fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return &domain.ProviderError{Provider: ProviderName, Op: op, Retryable: retryable, Err: err}
}

func retryableStatus(code int) bool {
	return code == 0 || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// Malformed is the error for a 200 answer that is missing what op needs.
func Malformed(op, what string) error {
	return &domain.ProviderError{Provider: ProviderName, Op: op, Err: fmt.Errorf("response has no %s", what)}
}

// Ping checks the key by listing models.
func Ping(ctx context.Context, c *openai.Client) error {
	if _, err := c.ListModels(ctx); err != nil {
		return ProviderError("ping", err)
	}
	return nil
}
