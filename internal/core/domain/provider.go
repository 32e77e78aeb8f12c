package domain

import "slices"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

const (
	// AIProviderLocal is a token-level model served by text-embeddings-inference
	// whose outputs are mean-pooled here.
	AIProviderLocal     AIProvider = "local"
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderGemini    AIProvider = "gemini"
	AIProviderAnthropic AIProvider = "anthropic"
	// AIProviderHTTP is a generic single-vector embedding endpoint.
	AIProviderHTTP AIProvider = "http"
)

type providerInfo struct {
	description string
	cloud       bool // needs an API key
	embedModel  string
	llmModel    string
	embeds      bool
	generates   bool
}

// providerOrder is the order used in menus and listings.
var providerOrder = []AIProvider{
	AIProviderLocal, AIProviderOllama, AIProviderOpenAI,
	AIProviderGemini, AIProviderAnthropic, AIProviderHTTP,
}

var providers = map[AIProvider]providerInfo{
	AIProviderLocal: {
		description: "Local token model (mean pooled)",
		embeds:      true,
		embedModel:  "sentence-transformers/all-MiniLM-L6-v2",
	},
	AIProviderOllama: {
		description: "Ollama (local)",
		embeds:      true,
		generates:   true,
		embedModel:  "nomic-embed-text",
		llmModel:    "llama3.2",
	},
	AIProviderOpenAI: {
		description: "OpenAI (cloud)",
		cloud:       true,
		embeds:      true,
		generates:   true,
		embedModel:  "text-embedding-3-small",
		llmModel:    "gpt-4o-mini",
	},
	AIProviderGemini: {
		description: "Google Gemini (cloud)",
		cloud:       true,
		embeds:      true,
		generates:   true,
		embedModel:  "text-embedding-004",
		llmModel:    "gemini-1.5-flash",
	},
	AIProviderAnthropic: {
		description: "Anthropic (cloud)",
		cloud:       true,
		generates:   true,
		llmModel:    "claude-3-5-sonnet-latest",
	},
	AIProviderHTTP: {
		description: "HTTP embedding endpoint",
		embeds:      true,
	},
}

func (p AIProvider) IsValid() bool {
	_, ok := providers[p]
	return ok
}

// RequiresAPIKey is true for the cloud providers.
func (p AIProvider) RequiresAPIKey() bool { return providers[p].cloud }

// IsLocal is true for providers that run on the hospital's own hardware.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// CanEmbed reports whether p can produce embeddings.
func (p AIProvider) CanEmbed() bool { return providers[p].embeds }

// CanGenerate reports whether p can write answers.
func (p AIProvider) CanGenerate() bool { return providers[p].generates }

func (p AIProvider) String() string { return string(p) }

func (p AIProvider) Description() string {
	if info, ok := providers[p]; ok {
		return info.description
	}
	return unknownDescription
}

// AllEmbeddingProviders lists the providers that can embed, in menu order.
func AllEmbeddingProviders() []AIProvider {
	return slices.DeleteFunc(slices.Clone(providerOrder), func(p AIProvider) bool { return !p.CanEmbed() })
}

// AllLLMProviders lists the providers that can generate, in menu order.
func AllLLMProviders() []AIProvider {
	return slices.DeleteFunc(slices.Clone(providerOrder), func(p AIProvider) bool { return !p.CanGenerate() })
}

// DefaultEmbeddingModels maps each embedding provider to its default model.
// The HTTP provider has none: the endpoint decides.
func DefaultEmbeddingModels() map[AIProvider]string {
	m := make(map[AIProvider]string)
	for p, info := range providers {
		if info.embedModel != "" {
			m[p] = info.embedModel
		}
	}
	return m
}

// DefaultLLMModels maps each generation provider to its default model.
func DefaultLLMModels() map[AIProvider]string {
	m := make(map[AIProvider]string)
	for p, info := range providers {
		if info.llmModel != "" {
			m[p] = info.llmModel
		}
	}
	return m
}
