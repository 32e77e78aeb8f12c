// Package cli provides the merkuze command line interface. It is a driving
// adapter: every command talks to the core through driving ports.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driving"
	"github.com/merkuze-health/merkuze/internal/logger"
)

// version is set at build time.
var version = "dev"

// verbose enables debug logging for every command.
var verbose bool

// Scope says how much of the application a command needs.
type Scope string

// Scopes, set through the scopeAnnotation of a command or one of its parents.
const (
	// ScopeFull opens stores and providers.
	ScopeFull Scope = "full"

	// ScopeSettings only loads settings and the extractor. The vector store
	// stays closed so these commands work while a server holds it.
	ScopeSettings Scope = "settings"

	// ScopeNone skips initialisation.
	ScopeNone Scope = "none"
)

const scopeAnnotation = "merkuze/scope"

// ChunkExtractor turns a structured knowledge-base document into chunks.
type ChunkExtractor interface {
	Extract(data []byte) ([]domain.Chunk, error)
}

// PromptWatcher reloads prompts when their files change.
type PromptWatcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// ServerConfig holds chat endpoint settings resolved from configuration.
type ServerConfig struct {
	Addr            string
	AllowedOrigins  []string
	FallbackMessage string
}

// Services aggregates everything the commands need.
type Services struct {
	Chat      driving.ChatService
	Index     driving.IndexService
	Ingestion driving.IngestionService
	Document  driving.DocumentService
	Settings  driving.SettingsService
	Extractor ChunkExtractor
	Prompts   PromptWatcher
	Server    ServerConfig

	// StartEmbedder begins loading a local model. Long-running commands call
	// it so readiness is reported while the model loads. Optional.
	StartEmbedder func()

	// WarmupEmbedder blocks until a local model is loaded. One-shot commands
	// call it before their single request. Optional.
	WarmupEmbedder func(ctx context.Context) error
}

// Initialiser builds the services for scope after flags are parsed. The
// returned cleanup runs when the command finishes.
type Initialiser func(scope Scope) (*Services, func(), error)

// Package-level services set by SetServices or the initialiser.
var (
	chatService      driving.ChatService
	indexService     driving.IndexService
	ingestionService driving.IngestionService
	documentService  driving.DocumentService
	settingsService  driving.SettingsService
	chunkExtractor   ChunkExtractor
	promptWatcher    PromptWatcher
	serverConfig     ServerConfig
	startEmbedder    func()
	warmupEmbedder   func(ctx context.Context) error
)

var (
	initialiser Initialiser
	cleanup     func()
)

var rootCmd = &cobra.Command{
	Use:   "merkuze",
	Short: "Hospital information assistant",
	Long: `Merkuze answers patient and visitor questions from a hospital knowledge base.

Ingest the structured knowledge base with 'merkuze ingest', then ask questions
with 'merkuze ask', the terminal chat ('merkuze chat') or the HTTP endpoint
('merkuze serve').`,
	SilenceUsage:      true,
	PersistentPreRunE: runPersistentPreRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs")
}

func runPersistentPreRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	scope := commandScope(cmd)
	if initialiser == nil || scope == ScopeNone {
		return nil
	}

	services, done, err := initialiser(scope)
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = done
	return nil
}

// commandScope returns the nearest scope annotation, defaulting to ScopeFull.
func commandScope(cmd *cobra.Command) Scope {
	for c := cmd; c != nil; c = c.Parent() {
		if scope, ok := c.Annotations[scopeAnnotation]; ok {
			return Scope(scope)
		}
	}
	return ScopeFull
}

// SetServices sets the services used by all commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	chatService = s.Chat
	indexService = s.Index
	ingestionService = s.Ingestion
	documentService = s.Document
	settingsService = s.Settings
	chunkExtractor = s.Extractor
	promptWatcher = s.Prompts
	serverConfig = s.Server
	startEmbedder = s.StartEmbedder
	warmupEmbedder = s.WarmupEmbedder
}

// SetInitialiser registers the function that builds services before a
// command runs.
func SetInitialiser(fn Initialiser) {
	initialiser = fn
}

// SetVersion sets the version reported by 'merkuze version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the command's context, falling back to Background
// when the command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// warmup waits for a loading embedding model. A failure is only logged; the
// request that follows reports it.
func warmup(cmd *cobra.Command) {
	if warmupEmbedder == nil {
		return
	}
	if err := warmupEmbedder(commandContext(cmd)); err != nil {
		logger.Warn("Embedding model not ready: %v", err)
	}
}
