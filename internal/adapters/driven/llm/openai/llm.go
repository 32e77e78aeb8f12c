// Package openai generates answers with the OpenAI chat completions API.
package openai

import (
	"cmp"
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/merkuze-health/merkuze/internal/adapters/driven/openaiclient"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

type Config struct {
	APIKey  string // required
	BaseURL string
	Model   string
	Timeout time.Duration
}

type LLMService struct {
	client *openai.Client
	model  string
}

func NewLLMService(cfg Config) (*LLMService, error) {
	client, err := openaiclient.New(cfg.APIKey, cfg.BaseURL, cmp.Or(cfg.Timeout, DefaultTimeout))
	if err != nil {
		return nil, err
	}
	return &LLMService{client: client, model: cmp.Or(cfg.Model, DefaultModel)}, nil
}

// Generate sends prompt as a single user message and returns the first choice.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
	})
	if err != nil {
		return "", openaiclient.ProviderError("generate", err)
	}
	if len(resp.Choices) == 0 {
		return "", openaiclient.Malformed("generate", "completion choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *LLMService) ModelName() string { return s.model }

func (s *LLMService) Ping(ctx context.Context) error { return openaiclient.Ping(ctx, s.client) }

func (s *LLMService) Close() error { return nil }
