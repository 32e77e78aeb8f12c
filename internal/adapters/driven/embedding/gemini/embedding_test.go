package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc, dims int) *EmbeddingService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewEmbeddingService(context.Background(), Config{
		APIKey:     "test-key",
		Dimensions: dims,
		Endpoint:   server.URL + "/",
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)
	return svc
}

func TestEmbed(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/text-embedding-004:embedContent", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "content")
		_, _ = w.Write([]byte(`{"embedding":{"values":[0.1,0.2,0.3]}}`))
	}, 3)

	vec, err := svc.Embed(context.Background(), "cardiology services")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "models/text-embedding-004", svc.ModelName())
}

func TestEmbed_EmptyInput(t *testing.T) {
	svc := newTestService(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	}, 3)

	_, err := svc.Embed(context.Background(), " ")

	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":{"values":[0.1,0.2]}}`))
	}, 768)

	_, err := svc.Embed(context.Background(), "x")

	var dm *domain.DimensionMismatchError
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 768, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
}

func TestEmbed_RateLimitedIsRetryable(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota"}}`))
	}, 3)

	_, err := svc.Embed(context.Background(), "x")

	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.True(t, domain.IsRetryable(err))
}

func TestEmbed_EmptyResponse(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, 3)

	_, err := svc.Embed(context.Background(), "x")

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.False(t, pe.Retryable)
}

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	_, err := NewEmbeddingService(context.Background(), Config{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
