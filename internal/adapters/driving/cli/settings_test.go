package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

func TestSettingsShowCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand("settings", "show")

	require.NoError(t, err)
	for _, section := range []string{"[Embedding]", "[LLM]", "[Vector Store]", "[Chat]", "[Ingest]", "[Server]"} {
		assert.Contains(t, out, section)
	}
	assert.Contains(t, out, "(none, answers use the fallback message)")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsCmd_DefaultsToShow(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand("settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
}

func TestSettingsShowCmd_ValidationWarning(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.settings.validateErr = errors.New("embedding API key is required")

	out, err := runCommand("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: embedding API key is required")
}

func TestSettingsSetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand("settings", "set", "chat.top_k", "8")

	require.NoError(t, err)
	assert.Contains(t, out, "Set chat.top_k = 8")
	assert.Equal(t, "8", mocks.settings.set["chat.top_k"])
}

func TestSettingsSetCmd_MasksAPIKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand("settings", "set", "llm.api_key", "sk-1234567890abcdef")

	require.NoError(t, err)
	assert.Contains(t, out, "Set llm.api_key = sk-1...cdef")
	assert.NotContains(t, out, "567890")
}

func TestSettingsSetCmd_InvalidKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand("settings", "set", "bogus.key", "1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsEmbeddingCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	// openai, default model, key from input
	out, err := runCommandWithInput("3\n\nsk-test-key-123456\n", "settings", "embedding")

	require.NoError(t, err)
	assert.Contains(t, out, "Validating configuration... OK")
	assert.Equal(t, domain.AIProviderOpenAI, mocks.settings.embedding)
	assert.Equal(t, "text-embedding-3-small", mocks.settings.embedModel)
	assert.Equal(t, "sk-test-key-123456", mocks.settings.embedKey)
}

func TestSettingsEmbeddingCmd_DefaultIsLocal(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommandWithInput("\n\n", "settings", "embedding")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderLocal, mocks.settings.embedding)
	assert.Empty(t, mocks.settings.embedKey)
}

func TestSettingsEmbeddingCmd_ValidationFails(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.settings.pingErr = domain.ErrEmbeddingUnavailable

	out, err := runCommandWithInput("2\nmxbai-embed-large\n", "settings", "embedding")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, out, "FAILED")
	assert.Equal(t, "mxbai-embed-large", mocks.settings.embedModel)
}

func TestSettingsLLMCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommandWithInput("2\n\n\n", "settings", "llm")

	require.NoError(t, err)
	assert.Contains(t, out, "LLM provider configured")
	assert.Equal(t, domain.AIProviderOpenAI, mocks.settings.llm)
	assert.Equal(t, "gpt-4o-mini", mocks.settings.llmModel)
}

func TestSettingsCmd_NotConfigured(t *testing.T) {
	_, err := runCommand("settings", "show")

	assert.EqualError(t, err, "settings service not configured")
}

func TestDescribeSettings_Pinecone(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.VectorStore.Backend = domain.VectorBackendPinecone
	settings.VectorStore.Cloud, settings.VectorStore.Region = "aws", "eu-west-1"
	settings.VectorStore.RequestsPerSecond = 5
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOpenAI, Model: "gpt-4o-mini"}

	sections := describeSettings(&settings)

	rows := map[string]map[string]string{}
	for _, s := range sections {
		rows[s.name] = map[string]string{}
		for _, r := range s.rows {
			rows[s.name][r[0]] = r[1]
		}
	}
	assert.Equal(t, "aws (eu-west-1)", rows["Vector Store"]["Cloud"])
	assert.Equal(t, "(not set)", rows["Vector Store"]["API Key"])
	assert.Equal(t, "5", rows["Vector Store"]["Requests per second"])
	assert.Equal(t, "(not set)", rows["LLM"]["API Key"])
	assert.Equal(t, "not configured", rows["LLM"]["Status"])
	assert.NotContains(t, rows["Embedding"], "API Key", "local embedder takes no key")
}

func TestWriteSection_AlignsValues(t *testing.T) {
	var out strings.Builder
	s := section{name: "Chat"}
	s.add("Top K", "5")
	s.add("Max tokens", "512")

	writeSection(&out, s)

	assert.Equal(t, "[Chat]\n  Top K:      5\n  Max tokens: 512\n\n", out.String())
}
