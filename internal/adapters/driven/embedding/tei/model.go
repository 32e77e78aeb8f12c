// Package tei reads token-level hidden states from a
// text-embeddings-inference server (/embed_all), leaving pooling to the
// caller.
package tei

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/merkuze-health/merkuze/internal/adapters/driven/jsonhttp"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

var _ driven.TokenModel = (*Model)(nil)

// Defaults for an unset Config.
const (
	DefaultBaseURL        = "http://localhost:8080"
	DefaultModel          = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultTimeout        = 30 * time.Second
	DefaultHealthInterval = time.Second
)

// Config points at the server. Model is only reported, the server decides
// what it serves.
type Config struct {
	BaseURL        string
	Model          string
	Timeout        time.Duration
	HealthInterval time.Duration
}

// Model implements driven.TokenModel over a TEI server.
type Model struct {
	http           *jsonhttp.Client
	baseURL        string
	model          string
	healthInterval time.Duration
}

type embedAllRequest struct {
	Inputs   string `json:"inputs"`
	Truncate bool   `json:"truncate"`
}

// NewModel returns a client for cfg with defaults filled in. It does not
// contact the server; Load does.
func NewModel(cfg Config) *Model {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HealthInterval == 0 {
		cfg.HealthInterval = DefaultHealthInterval
	}
	return &Model{
		http:           jsonhttp.New("tei", cfg.Timeout),
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		model:          cfg.Model,
		healthInterval: cfg.HealthInterval,
	}
}

// Name returns the configured model name.
func (m *Model) Name() string { return m.model }

// Load waits until /health answers 200. The server answers 503 while the
// model loads and refuses connections while it starts; both are waited out.
// Any other status fails at once.
func (m *Model) Load(ctx context.Context) error {
	ticker := time.NewTicker(m.healthInterval)
	defer ticker.Stop()

	for {
		err := m.http.Get(ctx, "health", m.baseURL+"/health", nil)
		if err == nil {
			return nil
		}
		if code := jsonhttp.StatusCode(err); code != 0 && code != http.StatusServiceUnavailable {
			return fmt.Errorf("tei: health returned status %d", code)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("tei: model not loaded (%v): %w", err, ctx.Err())
		case <-ticker.C:
		}
	}
}

// EmbedTokens returns one vector per input token, after the server's
// truncation to the model context.
func (m *Model) EmbedTokens(ctx context.Context, text string) ([][]float32, error) {
	var batch [][][]float32
	req := embedAllRequest{Inputs: text, Truncate: true}
	if err := m.http.Post(ctx, "embed_all", m.baseURL+"/embed_all", req, &batch); err != nil {
		return nil, err
	}
	if len(batch) != 1 {
		return nil, m.http.Fail("embed_all", fmt.Errorf("expected 1 result, got %d", len(batch)))
	}
	return batch[0], nil
}
