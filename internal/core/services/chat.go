package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
	"github.com/merkuze-health/merkuze/internal/core/ports/driving"
	"github.com/merkuze-health/merkuze/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// contextSeparator joins retrieved chunk texts in the prompt.
const contextSeparator = "\n\n"

// ChatConfig tunes the answer pipeline.
type ChatConfig struct {
	Collection      string
	TopK            int
	Temperature     float64
	MaxTokens       int
	MinAnswerLength int
	FallbackMessage string
	EmbedTimeout    time.Duration
	SearchTimeout   time.Duration
	GenerateTimeout time.Duration
}

// ChatConfigFromSettings maps application settings to a ChatConfig.
func ChatConfigFromSettings(s *domain.AppSettings) ChatConfig {
	return ChatConfig{
		Collection:      s.VectorStore.Collection,
		TopK:            s.Chat.TopK,
		Temperature:     s.Chat.Temperature,
		MaxTokens:       s.Chat.MaxTokens,
		MinAnswerLength: s.Chat.MinAnswerLength,
		FallbackMessage: s.Chat.FallbackMessage,
		EmbedTimeout:    s.Chat.EmbedTimeout,
		SearchTimeout:   s.Chat.SearchTimeout,
		GenerateTimeout: s.Chat.GenerateTimeout,
	}
}

func (c ChatConfig) withDefaults() ChatConfig {
	d := domain.DefaultAppSettings()
	if c.Collection == "" {
		c.Collection = d.VectorStore.Collection
	}
	if c.TopK <= 0 {
		c.TopK = d.Chat.TopK
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.Chat.MaxTokens
	}
	if c.MinAnswerLength <= 0 {
		c.MinAnswerLength = d.Chat.MinAnswerLength
	}
	if strings.TrimSpace(c.FallbackMessage) == "" {
		c.FallbackMessage = d.Chat.FallbackMessage
	}
	if c.EmbedTimeout <= 0 {
		c.EmbedTimeout = d.Chat.EmbedTimeout
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = d.Chat.SearchTimeout
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = d.Chat.GenerateTimeout
	}
	return c
}

// ChatService answers questions from the indexed knowledge base. It holds
// no per-request state and is safe for concurrent use.
type ChatService struct {
	index    *VectorIndex
	embedder driven.EmbeddingService
	llm      driven.LLMService
	prompts  driven.PromptStore
	reporter driven.ErrorReporter
	cfg      ChatConfig
}

// NewChatService creates a chat service. The reporter may be nil.
func NewChatService(
	index *VectorIndex,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	reporter driven.ErrorReporter,
	cfg ChatConfig,
) *ChatService {
	return &ChatService{
		index:    index,
		embedder: embedder,
		llm:      llm,
		prompts:  prompts,
		reporter: reporter,
		cfg:      cfg.withDefaults(),
	}
}

// Readiness reports the embedding provider's state.
func (s *ChatService) Readiness() domain.Readiness {
	if s.embedder == nil {
		return domain.ReadinessFailed
	}
	if r, ok := s.embedder.(driven.ReadinessReporter); ok {
		return r.Ready()
	}
	return domain.ReadinessReady
}

// Retrieve embeds query and returns the topK nearest chunks with their text.
func (s *ChatService) Retrieve(ctx context.Context, query string, topK int) (domain.QueryResult, error) {
	vector, err := s.embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.search(ctx, vector, topK)
}

// Answer runs the pipeline for one message. Failures never escape: the
// answer carries the fallback text and the cause is reported out of band.
func (s *ChatService) Answer(ctx context.Context, message string) *domain.Answer {
	id := uuid.NewString()
	p := &pipeline{
		svc:    s,
		answer: &domain.Answer{RequestID: id},
		log:    logger.For(id),
	}
	logger.Section("Answer " + p.answer.RequestID)
	return p.run(ctx, message)
}

// pipeline carries one request through the answer states.
type pipeline struct {
	svc    *ChatService
	answer *domain.Answer
	state  domain.AnswerState
	log    logger.Scoped
}

func (p *pipeline) enter(state domain.AnswerState) {
	p.state = state
	p.log.Debug("%s", state)
}

func (p *pipeline) run(ctx context.Context, message string) *domain.Answer {
	s := p.svc

	p.enter(domain.StateReceived)
	question := strings.TrimSpace(message)
	if question == "" {
		return p.fail(ctx, &domain.EmptyInputError{What: "message"})
	}
	if s.llm == nil {
		return p.fail(ctx, domain.ErrLLMUnavailable)
	}

	p.enter(domain.StateEmbedding)
	if r := s.Readiness(); r != domain.ReadinessReady {
		return p.fail(ctx, fmt.Errorf("embedding provider %s: %w", r, domain.ErrNotReady))
	}
	vector, err := s.embed(ctx, question)
	if err != nil {
		return p.fail(ctx, err)
	}

	p.enter(domain.StateSearching)
	matches, err := s.search(ctx, vector, s.cfg.TopK)
	if err != nil {
		return p.fail(ctx, err)
	}
	p.answer.Matches = matches
	p.log.Debug("retrieved %v", matches.IDs())

	p.enter(domain.StateContextAssembled)
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Text)
	}
	prompt, err := s.buildPrompt(strings.Join(texts, contextSeparator), question)
	if err != nil {
		return p.fail(ctx, err)
	}

	p.enter(domain.StateGenerating)
	text, err := s.generate(ctx, prompt)
	if err != nil {
		return p.fail(ctx, err)
	}

	p.enter(domain.StateAnswered)
	p.answer.State = domain.StateAnswered
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < s.cfg.MinAnswerLength {
		p.log.Warn("answer too short (%d runes), using fallback", utf8.RuneCountInString(text))
		p.answer.Text = s.cfg.FallbackMessage
		p.answer.Fallback = true
		return p.answer
	}
	p.answer.Text = text
	return p.answer
}

// fail moves the request to the errored state with the fallback answer.
func (p *pipeline) fail(ctx context.Context, err error) *domain.Answer {
	p.log.Debug("%s failed: %v", p.state, err)
	p.answer.FailedAt = p.state
	p.answer.State = domain.StateErrored
	p.answer.Text = p.svc.cfg.FallbackMessage
	p.answer.Fallback = true
	p.answer.Err = err
	if p.svc.reporter != nil {
		// Report even if the request context is done.
		p.svc.reporter.Report(context.WithoutCancel(ctx), p.answer.RequestID, p.state, err)
	}
	return p.answer
}

func (s *ChatService) embed(ctx context.Context, text string) ([]float32, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.EmbedTimeout)
	defer cancel()
	return s.embedder.Embed(ctx, text)
}

func (s *ChatService) search(ctx context.Context, vector []float32, topK int) (domain.QueryResult, error) {
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
	defer cancel()

	h, err := s.index.Resolve(ctx, s.cfg.Collection, len(vector))
	if err != nil {
		return nil, err
	}
	return s.index.Query(ctx, h, vector, topK, true)
}

func (s *ChatService) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
	defer cancel()

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("generation timed out after %s: %w", s.cfg.GenerateTimeout, err)
	}
	return text, err
}

// buildPrompt fills the answer template with persona, context and question.
func (s *ChatService) buildPrompt(contextText, question string) (string, error) {
	if s.prompts == nil {
		return "", fmt.Errorf("no prompt store: %w", domain.ErrInvalidInput)
	}
	persona, err := s.prompts.Load(driven.PromptPersona)
	if err != nil {
		return "", fmt.Errorf("load persona prompt: %w", err)
	}
	template, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return "", fmt.Errorf("load answer prompt: %w", err)
	}
	return fmt.Sprintf(template, strings.TrimSpace(persona), contextText, question), nil
}
