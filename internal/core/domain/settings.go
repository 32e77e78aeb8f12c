package domain

import "time"

// VectorBackend identifies a vector store implementation.
type VectorBackend string

// Available vector store backends.
const (
	VectorBackendMemory   VectorBackend = "memory"
	VectorBackendBolt     VectorBackend = "bolt"
	VectorBackendPinecone VectorBackend = "pinecone"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendMemory, VectorBackendBolt, VectorBackendPinecone:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (local, ollama, http).
	BaseURL string

	// APIKey is the API key (cloud providers).
	APIKey string

	// Dimensions overrides the model's known vector size.
	Dimensions int
}

// IsConfigured reports whether the settings name an embedding provider with
// everything it needs to be built.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.CanEmbed() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	if e.Provider == AIProviderHTTP && e.BaseURL == "" {
		return false
	}
	return true
}

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (cloud providers).
	APIKey string
}

// IsConfigured reports whether the settings name a generation provider and,
// for cloud providers, carry a key.
func (l LLMSettings) IsConfigured() bool {
	return l.Provider.CanGenerate() && (!l.Provider.RequiresAPIKey() || l.APIKey != "")
}

// VectorStoreSettings holds vector store configuration.
type VectorStoreSettings struct {
	// Backend selects the store implementation.
	Backend VectorBackend

	// Collection is the logical collection name.
	Collection string

	// Path is the database file for the bolt backend.
	Path string

	// BaseURL is the control plane URL for the pinecone backend.
	BaseURL string

	// APIKey authenticates against the pinecone backend.
	APIKey string

	// Cloud and Region place new serverless pinecone indexes.
	Cloud  string
	Region string

	// RequestsPerSecond throttles calls to a remote backend.
	RequestsPerSecond float64
}

// ChatSettings configures the retrieval and answer pipeline.
type ChatSettings struct {
	TopK            int
	Temperature     float64
	MaxTokens       int
	MinAnswerLength int
	FallbackMessage string
	EmbedTimeout    time.Duration
	SearchTimeout   time.Duration
	GenerateTimeout time.Duration
}

// IngestSettings configures the ingestion pipeline.
type IngestSettings struct {
	RequestsPerSecond float64
	MaxAttempts       int
	EmbedTimeout      time.Duration
	RetireStale       bool
}

// ServerSettings configures the chat HTTP endpoint.
type ServerSettings struct {
	Addr           string
	AllowedOrigins []string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	VectorStore VectorStoreSettings
	Chat        ChatSettings
	Ingest      IngestSettings
	Server      ServerSettings

	// DocumentsPath is the directory holding the sqlite metadata database.
	DocumentsPath string
}

// DefaultFallbackMessage is shown to users whenever an answer cannot be produced.
const DefaultFallbackMessage = "I'm sorry, I couldn't find an answer right now. " +
	"Please contact the hospital reception or your doctor for help."

// DefaultCollection is the logical collection name used when none is configured.
const DefaultCollection = "merkuze-hospital"

// DefaultAppSettings returns settings with sensible defaults.
// The local pooled model is the default embedder; generation is left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderLocal,
			Model:    DefaultEmbeddingModels()[AIProviderLocal],
			BaseURL:  "http://localhost:8080",
		},
		LLM: LLMSettings{},
		VectorStore: VectorStoreSettings{
			Backend:           VectorBackendBolt,
			Collection:        DefaultCollection,
			Cloud:             "aws",
			Region:            "us-east-1",
			RequestsPerSecond: 10,
		},
		Chat: ChatSettings{
			TopK:            DefaultTopK,
			Temperature:     0.2,
			MaxTokens:       512,
			MinAnswerLength: 2,
			FallbackMessage: DefaultFallbackMessage,
			EmbedTimeout:    10 * time.Second,
			SearchTimeout:   10 * time.Second,
			GenerateTimeout: 30 * time.Second,
		},
		Ingest: IngestSettings{
			RequestsPerSecond: 5,
			MaxAttempts:       3,
			EmbedTimeout:      30 * time.Second,
		},
		Server: ServerSettings{
			Addr:           ":3001",
			AllowedOrigins: []string{"*"},
		},
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Local token models
		"sentence-transformers/all-MiniLM-L6-v2": 384,
		"Xenova/all-MiniLM-L6-v2":                384,
		"BAAI/bge-small-en-v1.5":                 384,
		"BAAI/bge-base-en-v1.5":                  768,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
		"embedding-001":      768,
	}
}

// ResolveDimensions returns the configured dimension override or the known
// dimension for the model, or 0 if neither is known.
func (e EmbeddingSettings) ResolveDimensions() int {
	if e.Dimensions > 0 {
		return e.Dimensions
	}
	return EmbeddingDimensions()[e.Model]
}
