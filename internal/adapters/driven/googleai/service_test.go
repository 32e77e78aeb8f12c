package googleai

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

func TestModelPath(t *testing.T) {
	assert.Equal(t, "models/text-embedding-004", ModelPath("text-embedding-004"))
	assert.Equal(t, "models/gemini-1.5-flash", ModelPath("models/gemini-1.5-flash"))
}

func TestProviderError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"server error", &googleapi.Error{Code: http.StatusServiceUnavailable}, true},
		{"bad request", &googleapi.Error{Code: http.StatusBadRequest}, false},
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden}, false},
		{"transport", errors.New("dial tcp: connection refused"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ProviderError("embed", tt.err)

			var pe *domain.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, ProviderName, pe.Provider)
			assert.Equal(t, tt.retryable, pe.Retryable)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestNewService_RequiresKey(t *testing.T) {
	_, err := NewService(context.Background(), "", "", nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProviderError_RateLimited(t *testing.T) {
	err := ProviderError("generate", &googleapi.Error{Code: http.StatusTooManyRequests})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.True(t, domain.IsRetryable(err))
}
