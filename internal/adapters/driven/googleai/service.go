// Package googleai provides shared plumbing for the Gemini adapters: client
// construction and classification of Google API errors.
package googleai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// ProviderName identifies Gemini in provider errors.
const ProviderName = "gemini"

// NewService creates a Generative Language API client authenticated with an
// API key. endpoint overrides the public endpoint when non-empty.
func NewService(ctx context.Context, apiKey, endpoint string, client *http.Client) (*generativelanguage.Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w: API key is required", domain.ErrInvalidInput)
	}
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if client != nil {
		opts = append(opts, option.WithHTTPClient(client))
	}
	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return svc, nil
}

// ModelPath returns the resource name for a model id.
func ModelPath(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

// ProviderError converts a Google API failure into a domain provider error.
// Rate limits, server errors and transport failures are retryable.
func ProviderError(op string, err error) error {
	retryable := true
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		retryable = IsRetryableStatus(gerr.Code)
		if gerr.Code == http.StatusTooManyRequests {
			err = fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
		}
	}
	return &domain.ProviderError{Provider: ProviderName, Op: op, Retryable: retryable, Err: err}
}

// IsRetryableStatus reports whether an HTTP status is worth retrying.
func IsRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
