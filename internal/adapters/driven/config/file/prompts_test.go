package file

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
	"github.com/merkuze-health/merkuze/internal/logger"
)

const customAnswer = "%s\n\nUse only this:\n%s\n\nVisitor asks: %s"

func writePrompt(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".txt"), []byte(content), 0600))
}

func TestNewPromptStore_Dir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}
	store, err = NewPromptStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".merkuze", "prompts"), store.Dir())
}

func TestPromptStore_NoIOBeforeLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")

	_, err := NewPromptStore(dir)
	require.NoError(t, err)

	assert.NoDirExists(t, dir)
}

func TestPromptStore_SeedsDefaults(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	answer, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	assert.Equal(t, builtinPrompts[driven.PromptAnswer], answer)
	assert.Equal(t, answerPlaceholders, countPlaceholders(answer))
	for _, f := range []string{"answer.txt", "persona.txt", "README.md"} {
		assert.FileExists(t, filepath.Join(dir, f))
	}
	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "--watch-prompts")
}

func TestPromptStore_KeepsHandEditedFiles(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, driven.PromptPersona, "  You are the St. Mary's front desk.\n\n")
	writePrompt(t, dir, driven.PromptAnswer, customAnswer)

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	persona, err := store.Load(driven.PromptPersona)
	require.NoError(t, err)
	assert.Equal(t, "You are the St. Mary's front desk.", persona)

	answer, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, customAnswer, answer)

	data, err := os.ReadFile(filepath.Join(dir, "answer.txt"))
	require.NoError(t, err)
	assert.Equal(t, customAnswer, string(data), "seeding never overwrites")
}

func TestPromptStore_RejectsBrokenAnswerTemplate(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(nil)
	})

	dir := t.TempDir()
	writePrompt(t, dir, driven.PromptAnswer, "Context: %s\nQuestion: %s")

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	answer, err := store.Load(driven.PromptAnswer)

	require.NoError(t, err)
	assert.Equal(t, builtinPrompts[driven.PromptAnswer], answer)
	assert.Contains(t, logs.String(), "answer template has 2 %s placeholders, want 3")
}

func TestPromptStore_PersonaIsNotChecked(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, driven.PromptPersona, "Answer in 100% plain English.")

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	persona, err := store.Load(driven.PromptPersona)
	require.NoError(t, err)
	assert.Equal(t, "Answer in 100% plain English.", persona)
}

func TestPromptStore_DeletedFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "answer.txt")))
	store.Reload()

	answer, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, builtinPrompts[driven.PromptAnswer], answer)
}

func TestPromptStore_UnwritableDirFallsBack(t *testing.T) {
	store, err := NewPromptStore("/dev/null/prompts")
	require.NoError(t, err)

	persona, err := store.Load(driven.PromptPersona)

	require.NoError(t, err)
	assert.Equal(t, builtinPrompts[driven.PromptPersona], persona)
}

func TestPromptStore_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("triage")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), `"triage"`)
}

func TestPromptStore_ExtraPromptFile(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "triage", "Route urgent questions to the emergency department.")

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load("triage")
	require.NoError(t, err)
	assert.Equal(t, "Route urgent questions to the emergency department.", prompt)
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	writePrompt(t, dir, driven.PromptAnswer, customAnswer)
	cached, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, first, cached, "served from cache until Reload")

	store.Reload()
	fresh, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, customAnswer, fresh)
}

func TestPromptStore_ConcurrentLoads(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	results := make([]string, 50)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = store.Load(driven.PromptAnswer)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, builtinPrompts[driven.PromptAnswer], r)
	}
}

func TestCountPlaceholders(t *testing.T) {
	tests := []struct {
		template string
		want     int
	}{
		{template: "", want: 0},
		{template: "%s", want: 1},
		{template: "%s %s %s", want: 3},
		{template: "100%% sure: %s", want: 1},
		{template: "%%s is escaped", want: 0},
		{template: "%d and %v are not counted", want: 0},
		{template: "trailing %", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			assert.Equal(t, tt.want, countPlaceholders(tt.template))
		})
	}
}
