// Package anthropic generates answers with the Anthropic Messages API.
package anthropic

import (
	"cmp"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/merkuze-health/merkuze/internal/adapters/driven/jsonhttp"
	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

// Defaults for an unset Config.
const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 120 * time.Second

	// DefaultMaxTokens is sent when the caller sets no limit; the API
	// rejects requests without one.
	DefaultMaxTokens = 1024

	anthropicVersion = "2023-06-01"
)

// Config selects the account, endpoint and model.
type Config struct {
	APIKey  string // required
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService implements driven.LLMService with the Messages API.
type LLMService struct {
	http    *jsonhttp.Client
	baseURL string
	model   string
}

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// NewLLMService fails without an API key.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w: API key is required", domain.ErrInvalidInput)
	}
	cfg.BaseURL = cmp.Or(cfg.BaseURL, DefaultBaseURL)
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := jsonhttp.New("anthropic", cfg.Timeout).
		WithHeader("x-api-key", cfg.APIKey).
		WithHeader("anthropic-version", anthropicVersion)
	return &LLMService{
		http:    client,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cmp.Or(cfg.Model, DefaultModel),
	}, nil
}

// Generate sends prompt as a single user turn and joins the text blocks of
// the reply. Overload (529) and rate limits come back retryable.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := messagesRequest{
		Model:       s.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}

	var resp messagesResponse
	if err := s.http.Post(ctx, "generate", s.baseURL+"/v1/messages", req, &resp); err != nil {
		return "", err
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string { return s.model }

// Ping checks the key by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.http.Get(ctx, "ping", s.baseURL+"/v1/models", nil)
}

// Close is a no-op.
func (s *LLMService) Close() error { return nil }
