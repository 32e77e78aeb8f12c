package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

var errNoSettingsService = errors.New("settings service not configured")

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, the vector store and the answer pipeline.

Settings are stored in ~/.merkuze/config.toml. API keys may also come from the
environment (MERKUZE_EMBEDDING_API_KEY, MERKUZE_LLM_API_KEY,
MERKUZE_PINECONE_API_KEY or the provider's own variable).`,
	Annotations: map[string]string{scopeAnnotation: string(ScopeSettings)},
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key, for example:

  merkuze settings set chat.top_k 8
  merkuze settings set chat.generate_timeout 45s
  merkuze settings set vector_store.backend pinecone
  merkuze settings set server.allowed_origins https://hospital.example,https://intranet.example`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Choose the embedding provider used for ingestion and retrieval.

Switching to a model with another vector dimension is safe: the next ingestion
creates a new collection for that dimension.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProviderWizard(cmd, embeddingWizard)
	},
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Choose the LLM provider that writes answers from retrieved hospital documents.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProviderWizard(cmd, llmWizard)
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsEmbeddingCmd, settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

// section is one "[Name]" block of `settings show`.
type section struct {
	name string
	rows [][2]string
}

func (s *section) add(label, value string) {
	s.rows = append(s.rows, [2]string{label, value})
}

func (s *section) addf(label, format string, args ...any) {
	s.add(label, fmt.Sprintf(format, args...))
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Current Settings")
	fmt.Fprintln(out, "================")
	fmt.Fprintln(out)
	for _, s := range describeSettings(settings) {
		writeSection(out, s)
	}

	if err := settingsService.Validate(); err != nil {
		fmt.Fprintf(out, "Warning: %v\n", err)
		fmt.Fprintln(out, "Run 'merkuze settings embedding' or 'merkuze settings set' to fix configuration issues.")
		return nil
	}
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}

func describeSettings(s *domain.AppSettings) []section {
	emb := section{name: "Embedding"}
	emb.add("Provider", s.Embedding.Provider.Description())
	emb.add("Model", s.Embedding.Model)
	emb.add("Dimensions", strconv.Itoa(s.Embedding.ResolveDimensions()))
	addEndpoint(&emb, s.Embedding.Provider, s.Embedding.BaseURL, s.Embedding.APIKey)
	emb.add("Status", status(s.Embedding.IsConfigured()))

	llm := section{name: "LLM"}
	if s.LLM.Provider == "" {
		llm.add("Provider", "(none, answers use the fallback message)")
	} else {
		llm.add("Provider", s.LLM.Provider.Description())
		llm.add("Model", s.LLM.Model)
		addEndpoint(&llm, s.LLM.Provider, s.LLM.BaseURL, s.LLM.APIKey)
		llm.add("Status", status(s.LLM.IsConfigured()))
	}

	vs := s.VectorStore
	store := section{name: "Vector Store"}
	store.add("Backend", vs.Backend.String())
	store.add("Collection", vs.Collection)
	switch vs.Backend {
	case domain.VectorBackendBolt:
		if vs.Path != "" {
			store.add("Path", vs.Path)
		}
	case domain.VectorBackendPinecone:
		store.addf("Cloud", "%s (%s)", vs.Cloud, vs.Region)
		store.add("API Key", masked(vs.APIKey))
		if vs.RequestsPerSecond > 0 {
			store.addf("Requests per second", "%g", vs.RequestsPerSecond)
		}
	case domain.VectorBackendMemory:
	}

	chat := section{name: "Chat"}
	chat.addf("Top K", "%d", s.Chat.TopK)
	chat.addf("Temperature", "%.2f", s.Chat.Temperature)
	chat.addf("Max tokens", "%d", s.Chat.MaxTokens)
	chat.addf("Timeouts", "embed %s, search %s, generate %s",
		s.Chat.EmbedTimeout, s.Chat.SearchTimeout, s.Chat.GenerateTimeout)

	ingest := section{name: "Ingest"}
	ingest.addf("Requests per second", "%g", s.Ingest.RequestsPerSecond)
	ingest.addf("Max attempts", "%d", s.Ingest.MaxAttempts)
	ingest.addf("Retire stale", "%t", s.Ingest.RetireStale)

	server := section{name: "Server"}
	server.add("Address", s.Server.Addr)
	server.add("Allowed origins", strings.Join(s.Server.AllowedOrigins, ", "))

	return []section{emb, llm, store, chat, ingest, server}
}

// addEndpoint shows the base URL when one is set and the key only for
// providers that take one.
func addEndpoint(s *section, provider domain.AIProvider, baseURL, apiKey string) {
	if baseURL != "" {
		s.add("Base URL", baseURL)
	}
	if provider.RequiresAPIKey() {
		s.add("API Key", masked(apiKey))
	}
}

func writeSection(out io.Writer, s section) {
	fmt.Fprintf(out, "[%s]\n", s.name)
	tw := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	for _, row := range s.rows {
		fmt.Fprintf(tw, "  %s:\t%s\n", row[0], row[1])
	}
	_ = tw.Flush()
	fmt.Fprintln(out)
}

func masked(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func status(configured bool) string {
	if configured {
		return "configured"
	}
	return "not configured"
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}
	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if strings.HasSuffix(key, "api_key") {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

// providerWizard is the interactive flow shared by `settings embedding` and
// `settings llm`.
type providerWizard struct {
	kind      string
	providers []domain.AIProvider
	models    map[domain.AIProvider]string
	save      func(provider domain.AIProvider, model, apiKey string) error
	validate  func() error
}

func embeddingWizard() providerWizard {
	return providerWizard{
		kind:      "Embedding",
		providers: domain.AllEmbeddingProviders(),
		models:    domain.DefaultEmbeddingModels(),
		save:      settingsService.SetEmbeddingProvider,
		validate:  settingsService.ValidateEmbeddingConfig,
	}
}

func llmWizard() providerWizard {
	return providerWizard{
		kind:      "LLM",
		providers: domain.AllLLMProviders(),
		models:    domain.DefaultLLMModels(),
		save:      settingsService.SetLLMProvider,
		validate:  settingsService.ValidateLLMConfig,
	}
}

// runProviderWizard asks for a provider, a model and, for cloud providers,
// a key; saves them; then pings the provider. The choice stays saved when
// the ping fails so it can be fixed with `settings set`.
func runProviderWizard(cmd *cobra.Command, newWizard func() providerWizard) error {
	if settingsService == nil {
		return errNoSettingsService
	}
	w := newWizard()
	in := bufio.NewReader(cmd.InOrStdin())

	cmd.Printf("Select %s Provider\n", w.kind)
	for i, p := range w.providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	provider := w.providers[parseChoice(readLine(in), len(w.providers), 1)-1]

	model := w.models[provider]
	cmd.Printf("Enter model name [%s]: ", model)
	if typed := readLine(in); typed != "" {
		model = typed
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key (empty to use the environment): ")
		apiKey = readPassword(cmd, in)
		cmd.Println()
	}

	if err := w.save(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", w.kind, err)
	}

	cmd.Print("Validating configuration... ")
	if err := w.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", w.kind, err)
	}
	cmd.Println("OK")
	cmd.Printf("%s provider configured: %s (%s)\n\n", w.kind, provider.Description(), model)
	return nil
}
