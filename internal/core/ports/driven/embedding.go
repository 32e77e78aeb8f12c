// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// EmbeddingService turns text into a fixed-length vector.
//
// Every implementation shares one contract regardless of strategy:
//   - empty or whitespace-only text fails with *domain.EmptyInputError
//   - backend failures surface as *domain.ProviderError wrapping the cause
//   - returned vectors always have length Dimensions(); a zero vector is never
//     substituted for a failure
//
// Implementations include a local token-pooling model and remote single-vector
// APIs (OpenAI, Gemini, Ollama, generic HTTP).
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// It must match the dimension of the collection the vectors are stored in.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ReadinessReporter is implemented by embedding services that initialise
// asynchronously. Services that do not implement it are always ready.
type ReadinessReporter interface {
	// Ready returns the current initialisation state.
	Ready() domain.Readiness
}

// TokenModel is a feature-extraction model that returns one vector per input token.
// It is consumed by the local pooling embedding service.
type TokenModel interface {
	// Load performs the one-time model initialisation. It blocks until the
	// model is usable or has failed.
	Load(ctx context.Context) error

	// EmbedTokens returns the per-token hidden states for text.
	EmbedTokens(ctx context.Context, text string) ([][]float32, error)

	// Name returns the model identifier.
	Name() string
}

// Warmer is implemented by embedding services that can block until their
// model is usable. Ingestion warms up before the first chunk.
type Warmer interface {
	Warmup(ctx context.Context) error
}
