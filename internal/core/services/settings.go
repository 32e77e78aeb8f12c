package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
	"github.com/merkuze-health/merkuze/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDimensions = "embedding.dimensions"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"

	keyStoreBackend    = "vector_store.backend"
	keyStorePath       = "vector_store.path"
	keyStoreCollection = "vector_store.collection"
	keyStoreBaseURL    = "vector_store.base_url"
	keyStoreAPIKey     = "vector_store.api_key"
	keyStoreCloud      = "vector_store.cloud"
	keyStoreRegion     = "vector_store.region"
	keyStoreRPS        = "vector_store.requests_per_second"

	keyChatTopK            = "chat.top_k"
	keyChatTemperature     = "chat.temperature"
	keyChatMaxTokens       = "chat.max_tokens"
	keyChatMinAnswerLength = "chat.min_answer_length"
	keyChatFallback        = "chat.fallback_message"
	keyChatEmbedTimeout    = "chat.embed_timeout"
	keyChatSearchTimeout   = "chat.search_timeout"
	keyChatGenerateTimeout = "chat.generate_timeout"

	keyIngestRPS          = "ingest.requests_per_second"
	keyIngestMaxAttempts  = "ingest.max_attempts"
	keyIngestEmbedTimeout = "ingest.embed_timeout"
	keyIngestRetireStale  = "ingest.retire_stale"

	keyServerAddr    = "server.addr"
	keyServerOrigins = "server.allowed_origins"

	keyDocumentsPath = "documents.path"
)

// Environment variables that override secrets in the config file. The
// provider-specific names are consulted only when the provider matches.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvEmbeddingAPIKey = "MERKUZE_EMBEDDING_API_KEY"
	EnvLLMAPIKey       = "MERKUZE_LLM_API_KEY"
	EnvPineconeAPIKey  = "MERKUZE_PINECONE_API_KEY"
)

var providerEnv = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderGemini:    "GEMINI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

// valueKind describes how a config key's string form is parsed.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindList
)

var settingKinds = map[string]valueKind{
	keyEmbedProvider:   kindString,
	keyEmbedModel:      kindString,
	keyEmbedBaseURL:    kindString,
	keyEmbedAPIKey:     kindString,
	keyEmbedDimensions: kindInt,

	keyLLMProvider: kindString,
	keyLLMModel:    kindString,
	keyLLMBaseURL:  kindString,
	keyLLMAPIKey:   kindString,

	keyStoreBackend:    kindString,
	keyStorePath:       kindString,
	keyStoreCollection: kindString,
	keyStoreBaseURL:    kindString,
	keyStoreAPIKey:     kindString,
	keyStoreCloud:      kindString,
	keyStoreRegion:     kindString,
	keyStoreRPS:        kindFloat,

	keyChatTopK:            kindInt,
	keyChatTemperature:     kindFloat,
	keyChatMaxTokens:       kindInt,
	keyChatMinAnswerLength: kindInt,
	keyChatFallback:        kindString,
	keyChatEmbedTimeout:    kindDuration,
	keyChatSearchTimeout:   kindDuration,
	keyChatGenerateTimeout: kindDuration,

	keyIngestRPS:          kindFloat,
	keyIngestMaxAttempts:  kindInt,
	keyIngestEmbedTimeout: kindDuration,
	keyIngestRetireStale:  kindBool,

	keyServerAddr:    kindString,
	keyServerOrigins: kindList,

	keyDocumentsPath: kindString,
}

// SettingKeys returns every configurable key in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Default local endpoints filled in when switching to a local provider.
const (
	defaultLocalModelURL = "http://localhost:8080"
	defaultOllamaURL     = "http://localhost:11434"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithEnv replaces the environment lookup. Tests use it to isolate from the
// process environment.
func WithEnv(getenv func(string) string) SettingsOption {
	return func(s *SettingsService) {
		s.getenv = getenv
	}
}

// NewSettingsService creates a new settings service.
func NewSettingsService(
	configStore driven.ConfigStore,
	aiValidator driven.AIConfigValidator,
	opts ...SettingsOption,
) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves current application settings. Unset keys take their
// defaults and API keys may be overridden from the environment.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, d.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, d.LLM.Provider)

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   embedProvider,
			Model:      s.getString(keyEmbedModel, s.defaultEmbeddingModel(embedProvider, d)),
			BaseURL:    s.getString(keyEmbedBaseURL, defaultBaseURL(embedProvider)),
			APIKey:     s.secret(keyEmbedAPIKey, EnvEmbeddingAPIKey, providerEnv[embedProvider]),
			Dimensions: s.configStore.GetInt(keyEmbedDimensions),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    s.getString(keyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:  s.getString(keyLLMBaseURL, llmBaseURL(llmProvider)),
			APIKey:   s.secret(keyLLMAPIKey, EnvLLMAPIKey, providerEnv[llmProvider]),
		},
		VectorStore: domain.VectorStoreSettings{
			Backend:           s.getBackend(d.VectorStore.Backend),
			Path:              s.configStore.GetString(keyStorePath),
			Collection:        s.getString(keyStoreCollection, d.VectorStore.Collection),
			BaseURL:           s.configStore.GetString(keyStoreBaseURL),
			APIKey:            s.secret(keyStoreAPIKey, EnvPineconeAPIKey, "PINECONE_API_KEY"),
			Cloud:             s.getString(keyStoreCloud, d.VectorStore.Cloud),
			Region:            s.getString(keyStoreRegion, d.VectorStore.Region),
			RequestsPerSecond: s.getFloat(keyStoreRPS, d.VectorStore.RequestsPerSecond),
		},
		Chat: domain.ChatSettings{
			TopK:            s.getInt(keyChatTopK, d.Chat.TopK),
			Temperature:     s.getFloat(keyChatTemperature, d.Chat.Temperature),
			MaxTokens:       s.getInt(keyChatMaxTokens, d.Chat.MaxTokens),
			MinAnswerLength: s.getInt(keyChatMinAnswerLength, d.Chat.MinAnswerLength),
			FallbackMessage: s.getString(keyChatFallback, d.Chat.FallbackMessage),
			EmbedTimeout:    s.getDuration(keyChatEmbedTimeout, d.Chat.EmbedTimeout),
			SearchTimeout:   s.getDuration(keyChatSearchTimeout, d.Chat.SearchTimeout),
			GenerateTimeout: s.getDuration(keyChatGenerateTimeout, d.Chat.GenerateTimeout),
		},
		Ingest: domain.IngestSettings{
			RequestsPerSecond: s.getFloat(keyIngestRPS, d.Ingest.RequestsPerSecond),
			MaxAttempts:       s.getInt(keyIngestMaxAttempts, d.Ingest.MaxAttempts),
			EmbedTimeout:      s.getDuration(keyIngestEmbedTimeout, d.Ingest.EmbedTimeout),
			RetireStale:       s.getBool(keyIngestRetireStale, d.Ingest.RetireStale),
		},
		Server: domain.ServerSettings{
			Addr:           s.getString(keyServerAddr, d.Server.Addr),
			AllowedOrigins: s.getStringSlice(keyServerOrigins, d.Server.AllowedOrigins),
		},
		DocumentsPath: s.configStore.GetString(keyDocumentsPath),
	}

	return settings, nil
}

// Set parses value according to key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}

	var parsed any
	var err error
	switch kind {
	case kindInt:
		parsed, err = strconv.Atoi(value)
	case kindFloat:
		parsed, err = strconv.ParseFloat(value, 64)
	case kindBool:
		parsed, err = strconv.ParseBool(value)
	case kindDuration:
		var d time.Duration
		d, err = time.ParseDuration(value)
		parsed = d.String()
	case kindList:
		parsed = splitList(value)
	default:
		parsed = value
	}
	if err != nil {
		return fmt.Errorf("setting %s: %w: %v", key, domain.ErrInvalidInput, err)
	}

	switch key {
	case keyEmbedProvider, keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("invalid provider %q: %w", value, domain.ErrInvalidInput)
		}
	case keyStoreBackend:
		if !domain.VectorBackend(value).IsValid() {
			return fmt.Errorf("invalid vector store backend %q: %w", value, domain.ErrInvalidInput)
		}
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider. The model, base URL
// and dimension override are reset to the new provider's defaults.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(EnvEmbeddingAPIKey, providerEnv[provider]) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}
	// The http provider has no default endpoint; it keeps the one already set.
	baseURL := defaultBaseURL(provider)
	if provider == domain.AIProviderHTTP {
		baseURL = s.configStore.GetString(keyEmbedBaseURL)
	}
	if provider == domain.AIProviderHTTP && baseURL == "" {
		return fmt.Errorf("set %s before selecting the http provider: %w", keyEmbedBaseURL, domain.ErrInvalidInput)
	}

	return s.setAll(map[string]any{
		keyEmbedProvider:   provider.String(),
		keyEmbedModel:      model,
		keyEmbedBaseURL:    baseURL,
		keyEmbedAPIKey:     apiKey,
		keyEmbedDimensions: 0,
	})
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	valid := false
	for _, p := range domain.AllLLMProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support generation", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(EnvLLMAPIKey, providerEnv[provider]) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	return s.setAll(map[string]any{
		keyLLMProvider: provider.String(),
		keyLLMModel:    model,
		keyLLMBaseURL:  llmBaseURL(provider),
		keyLLMAPIKey:   apiKey,
	})
}

// Validate checks the current settings can run ingestion and chat.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider)
	}
	if settings.Embedding.ResolveDimensions() == 0 {
		return fmt.Errorf("unknown dimension for embedding model %q: set %s",
			settings.Embedding.Model, keyEmbedDimensions)
	}
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider)
	}
	if !settings.VectorStore.Backend.IsValid() {
		return fmt.Errorf("invalid vector store backend: %s", settings.VectorStore.Backend)
	}
	if settings.VectorStore.Backend == domain.VectorBackendPinecone && settings.VectorStore.APIKey == "" {
		return fmt.Errorf("pinecone backend requires %s", keyStoreAPIKey)
	}
	if settings.Chat.TopK <= 0 {
		return fmt.Errorf("%s must be positive", keyChatTopK)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// setAll writes values in key order so failures are reproducible.
func (s *SettingsService) setAll(values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.configStore.Set(k, values[k]); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	return nil
}

func defaultBaseURL(p domain.AIProvider) string {
	switch p {
	case domain.AIProviderLocal:
		return defaultLocalModelURL
	case domain.AIProviderOllama:
		return defaultOllamaURL
	default:
		return ""
	}
}

func llmBaseURL(p domain.AIProvider) string {
	if p == domain.AIProviderOllama {
		return defaultOllamaURL
	}
	return ""
}

func (s *SettingsService) defaultEmbeddingModel(p domain.AIProvider, d domain.AppSettings) string {
	if m, ok := domain.DefaultEmbeddingModels()[p]; ok {
		return m
	}
	if p == d.Embedding.Provider {
		return d.Embedding.Model
	}
	return ""
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper methods for reading config with defaults.

// secret returns the config value for key unless an environment variable
// overrides it. The generic variable wins over the provider-specific one.
func (s *SettingsService) secret(key string, envNames ...string) string {
	if v := s.envKey(envNames...); v != "" {
		return v
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) envKey(names ...string) string {
	for _, name := range names {
		if name == "" {
			continue
		}
		if v := strings.TrimSpace(s.getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	val := s.configStore.GetString(keyStoreBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.VectorBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
