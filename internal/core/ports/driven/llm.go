package driven

import "context"

// LLMService writes the answer once the prompt has been assembled from the
// retrieved chunks. It is optional: without one the chat pipeline answers
// every message with the fallback text.
//
// Failures surface as *domain.ProviderError; Retryable marks transport
// errors and 429/5xx responses. Adapters exist for OpenAI, Gemini,
// Anthropic and Ollama.
type LLMService interface {
	// Generate returns the completion for prompt. The caller bounds it with
	// a deadline on ctx.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	ModelName() string

	// Ping sends the smallest request the provider accepts.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions come from the chat.max_tokens and chat.temperature settings.
// A zero MaxTokens leaves the provider default in place.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
}
