// Package bootstrap wires settings, adapters and services into a runnable
// application. It is the only package that knows every adapter.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/merkuze-health/merkuze/internal/adapters/driven/ai"
	"github.com/merkuze-health/merkuze/internal/adapters/driven/config/file"
	reporterlog "github.com/merkuze-health/merkuze/internal/adapters/driven/reporter/log"
	"github.com/merkuze-health/merkuze/internal/adapters/driven/storage/memory"
	"github.com/merkuze-health/merkuze/internal/adapters/driven/storage/sqlite"
	"github.com/merkuze-health/merkuze/internal/adapters/driven/vectorstore/bolt"
	memvector "github.com/merkuze-health/merkuze/internal/adapters/driven/vectorstore/memory"
	"github.com/merkuze-health/merkuze/internal/adapters/driven/vectorstore/pinecone"
	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
	"github.com/merkuze-health/merkuze/internal/core/services"
	"github.com/merkuze-health/merkuze/internal/extractor"
	"github.com/merkuze-health/merkuze/internal/logger"
)

// VectorsFile is the bolt database name used when no path is configured.
const VectorsFile = "vectors.db"

// Options controls how the application is assembled.
type Options struct {
	// ConfigDir holds config.toml, prompts/ and the default data files.
	// Empty means ~/.merkuze.
	ConfigDir string

	// ConfigStore replaces the TOML store. Tests pass an in-memory store.
	ConfigStore driven.ConfigStore

	// InMemory keeps documents, run history and vectors in memory regardless
	// of the configured backend.
	InMemory bool

	// Getenv replaces the environment lookup for secrets.
	Getenv func(string) string

	// SettingsOnly stops after settings and the extractor. Stores and
	// providers are not opened and every other service is nil.
	SettingsOnly bool
}

// App holds the assembled services. Services whose provider could not be
// configured are still set; their operations report the missing provider.
type App struct {
	Settings  *domain.AppSettings
	ConfigDir string

	SettingsService  *services.SettingsService
	DocumentService  *services.DocumentService
	IndexService     *services.IndexService
	IngestionService *services.IngestionService
	ChatService      *services.ChatService
	ChatConfig       services.ChatConfig

	Extractor *extractor.Extractor
	Prompts   *file.PromptStore
	Reporter  *reporterlog.Reporter

	embedder driven.EmbeddingService
	llm      driven.LLMService
	closers  []func() error
}

// New reads settings and builds every service. Provider failures are logged
// and leave the dependent capability unavailable rather than failing startup,
// so settings commands keep working with a broken configuration.
func New(opts Options) (*App, error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config directory: %w", err)
		}
		configDir = dir
	}

	configStore := opts.ConfigStore
	if configStore == nil {
		store, err := file.NewConfigStore(configDir)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		configStore = store
	}

	var settingsOpts []services.SettingsOption
	if opts.Getenv != nil {
		settingsOpts = append(settingsOpts, services.WithEnv(opts.Getenv))
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator(), settingsOpts...)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	app := &App{
		Settings:        settings,
		ConfigDir:       configDir,
		SettingsService: settingsService,
		Extractor:       extractor.New(),
		Reporter:        reporterlog.New(),
	}
	if opts.SettingsOnly {
		return app, nil
	}

	history, err := app.openStorage(opts.InMemory)
	if err != nil {
		app.Close()
		return nil, err
	}

	store, err := app.openVectorStore(opts.InMemory)
	if err != nil {
		app.Close()
		return nil, err
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("open prompts: %w", err)
	}
	app.Prompts = prompts

	app.embedder = app.createEmbedder()
	app.llm = app.createLLM()

	index := services.NewVectorIndex(store)
	logical := settings.VectorStore.Collection

	app.IndexService = services.NewIndexService(index, app.embedder, logical)
	app.IngestionService = services.NewIngestionService(
		index,
		app.embedder,
		app.Extractor,
		services.IngestionConfigFromSettings(settings),
		services.WithHistory(history),
	)
	app.ChatConfig = services.ChatConfigFromSettings(settings)
	app.ChatService = services.NewChatService(index, app.embedder, app.llm, prompts, app.Reporter, app.ChatConfig)

	return app, nil
}

// openStorage opens the document repository and returns the ingestion history.
func (a *App) openStorage(inMemory bool) (driven.IngestionHistory, error) {
	if inMemory {
		a.DocumentService = services.NewDocumentService(memory.NewDocumentStore())
		return memory.NewRunStore(), nil
	}

	dataDir := a.Settings.DocumentsPath
	if dataDir == "" {
		dataDir = filepath.Join(a.ConfigDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	a.DocumentService = services.NewDocumentService(store.DocumentRepository())
	return store.IngestionHistory(), nil
}

// openVectorStore opens the configured backend.
func (a *App) openVectorStore(inMemory bool) (driven.VectorStore, error) {
	cfg := a.Settings.VectorStore
	if inMemory {
		cfg.Backend = domain.VectorBackendMemory
	}
	store, err := NewVectorStore(cfg, a.ConfigDir)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

// NewVectorStore creates the vector store selected by cfg. Relative bolt
// paths and the default file live under dataDir.
func NewVectorStore(cfg domain.VectorStoreSettings, dataDir string) (driven.VectorStore, error) {
	switch cfg.Backend {
	case domain.VectorBackendMemory:
		return memvector.NewStore(), nil

	case domain.VectorBackendBolt, "":
		path := cfg.Path
		if path == "" {
			path = filepath.Join(dataDir, VectorsFile)
		} else if !filepath.IsAbs(path) {
			path = filepath.Join(dataDir, path)
		}
		store, err := bolt.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open vector store: %w", err)
		}
		return store, nil

	case domain.VectorBackendPinecone:
		store, err := pinecone.NewStore(pinecone.Config{
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			Cloud:             cfg.Cloud,
			Region:            cfg.Region,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
		if err != nil {
			return nil, fmt.Errorf("open vector store: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("%w: vector store backend %s", domain.ErrUnsupportedType, cfg.Backend)
	}
}

// createEmbedder returns nil when the provider is not usable.
func (a *App) createEmbedder() driven.EmbeddingService {
	if !a.Settings.Embedding.IsConfigured() {
		logger.Warn("Embedding provider %q is not configured", a.Settings.Embedding.Provider)
		return nil
	}
	svc, err := ai.CreateEmbeddingService(&a.Settings.Embedding)
	if err != nil {
		logger.Warn("Embedding provider unavailable: %v", err)
		return nil
	}
	a.closers = append(a.closers, svc.Close)
	logger.Debug("Embedding: %s (%d dimensions)", svc.ModelName(), svc.Dimensions())
	return svc
}

// createLLM returns nil when generation is not configured. Chat then answers
// with the fallback message.
func (a *App) createLLM() driven.LLMService {
	if !a.Settings.LLM.IsConfigured() {
		logger.Debug("No LLM provider configured")
		return nil
	}
	svc, err := ai.CreateLLMService(&a.Settings.LLM)
	if err != nil {
		logger.Warn("LLM provider unavailable: %v", err)
		return nil
	}
	a.closers = append(a.closers, svc.Close)
	return svc
}

// starter is implemented by embedders that load a model in the background.
type starter interface {
	Start()
}

// StartEmbedder begins loading a local model so readiness can be reported
// while the process serves requests. Remote providers need no start.
func (a *App) StartEmbedder() {
	if s, ok := a.embedder.(starter); ok {
		s.Start()
	}
}

// WarmupEmbedder blocks until a local model is loaded. One-shot commands
// call it so their only request is not answered while the model loads.
func (a *App) WarmupEmbedder(ctx context.Context) error {
	if w, ok := a.embedder.(driven.Warmer); ok {
		return w.Warmup(ctx)
	}
	return nil
}

// HasEmbedder reports whether an embedding provider was created.
func (a *App) HasEmbedder() bool {
	return a.embedder != nil
}

// HasLLM reports whether a generation provider was created.
func (a *App) HasLLM() bool {
	return a.llm != nil
}

// Close releases stores and providers in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
