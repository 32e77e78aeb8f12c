package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
	"github.com/merkuze-health/merkuze/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// answerPlaceholders is the number of %s verbs the answer template is filled with:
// persona, retrieved hospital information, question.
const answerPlaceholders = 3

//nolint:lll // prompt text
var builtinPrompts = map[string]string{
	driven.PromptPersona: `You are Merkuze, a hospital assistant. Use hospital documents to answer clearly. If unsure, recommend contacting a doctor.`,

	driven.PromptAnswer: `%s

Answer the patient's question using only the hospital information below.
If the information does not contain the answer, say so and suggest contacting the hospital reception or a doctor.
Never give a diagnosis.

Hospital information:
%s

Question: %s
Answer:`,
}

const promptsReadme = "# Merkuze prompts\n\n" +
	"`persona.txt` describes the assistant. `answer.txt` is the template sent to\n" +
	"the language model and must keep exactly three `%s` placeholders, filled\n" +
	"in order with the persona, the retrieved hospital information and the\n" +
	"patient's question. Write a literal percent sign as `%%`.\n\n" +
	"An answer template with the wrong number of placeholders is ignored and\n" +
	"the built-in one is used instead. Edits apply to the next command, or at\n" +
	"once when `merkuze serve --watch-prompts` is running. Delete a file to get\n" +
	"the built-in text back.\n"

// PromptStore serves the persona and answer prompts from <dir>/<name>.txt.
// The first Load seeds missing files with the built-in text; nothing touches
// the disk before that. A prompt that cannot be read falls back to the
// built-in text.
type PromptStore struct {
	dir string

	seed    sync.Once
	seedErr error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore returns a store over dir, or ~/.merkuze/prompts when dir is empty.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(base, "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// Load returns the named prompt. Unknown names without a file fail with
// domain.ErrNotFound.
func (s *PromptStore) Load(name string) (string, error) {
	s.seed.Do(s.seedDefaults)

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	prompt, err := s.read(name)
	if err != nil {
		builtin, known := builtinPrompts[name]
		if !known {
			return "", fmt.Errorf("load prompt %q: %w", name, err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Prompt %q: %v; using the built-in text", name, err)
		}
		prompt = builtin
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// a concurrent Load may have filled the entry first
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached prompts so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// read loads and checks one prompt file.
func (s *PromptStore) read(name string) (string, error) {
	if s.seedErr != nil {
		return "", s.seedErr
	}
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	if err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(string(data))
	if name == driven.PromptAnswer {
		if n := countPlaceholders(prompt); n != answerPlaceholders {
			return "", fmt.Errorf("answer template has %d %%s placeholders, want %d", n, answerPlaceholders)
		}
	}
	return prompt, nil
}

// seedDefaults creates the directory, any missing prompt file and the README.
// Existing files are never overwritten.
func (s *PromptStore) seedDefaults() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	files := map[string]string{"README.md": promptsReadme}
	for name, text := range builtinPrompts {
		files[name+".txt"] = text
	}
	for file, content := range files {
		path := filepath.Join(s.dir, file)
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			s.seedErr = fmt.Errorf("write %s: %w", file, err)
			return
		}
	}
}

// countPlaceholders counts %s verbs, skipping escaped %%.
func countPlaceholders(template string) int {
	n := 0
	for i := 0; i < len(template)-1; i++ {
		if template[i] != '%' {
			continue
		}
		switch template[i+1] {
		case '%':
			i++
		case 's':
			n++
			i++
		}
	}
	return n
}
