// Package ollamaapi covers the three Ollama daemon endpoints Merkuze uses:
// /api/embed, /api/generate and /api/tags.
package ollamaapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/merkuze-health/merkuze/internal/adapters/driven/jsonhttp"
)

// DefaultBaseURL is where a local daemon listens.
const DefaultBaseURL = "http://localhost:11434"

// EmbedRequest is the body of POST /api/embed.
type EmbedRequest struct {
	Model    string   `json:"model"`
	Input    []string `json:"input"`
	Truncate bool     `json:"truncate"`
}

// EmbedResponse holds one vector per input.
type EmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *Options `json:"options,omitempty"`
}

// Options are sampling settings. NumPredict 0 leaves the model default.
type Options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

// GenerateResponse is the non-streaming reply.
type GenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Model is one entry of GET /api/tags.
type Model struct {
	Name string `json:"name"`
}

// Tags is the list of pulled models.
type Tags struct {
	Models []Model `json:"models"`
}

// Daemon is a client for one Ollama daemon.
type Daemon struct {
	http    *jsonhttp.Client
	baseURL string
}

// New returns a client for baseURL, or DefaultBaseURL when empty.
func New(baseURL string, timeout time.Duration) *Daemon {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Daemon{
		http:    jsonhttp.New("ollama", timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the daemon address without a trailing slash.
func (d *Daemon) BaseURL() string { return d.baseURL }

// Embed returns one vector per input. Inputs past the model's context are
// truncated by the daemon.
func (d *Daemon) Embed(ctx context.Context, model string, input ...string) ([][]float32, error) {
	var out EmbedResponse
	req := EmbedRequest{Model: model, Input: input, Truncate: true}
	if err := d.http.Post(ctx, "embed", d.baseURL+"/api/embed", req, &out); err != nil {
		return nil, err
	}
	if len(out.Embeddings) != len(input) {
		return nil, d.http.Fail("embed",
			fmt.Errorf("got %d embeddings for %d input", len(out.Embeddings), len(input)))
	}
	return out.Embeddings, nil
}

// Generate runs a single non-streaming completion.
func (d *Daemon) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	req.Stream = false
	var out GenerateResponse
	if err := d.http.Post(ctx, "generate", d.baseURL+"/api/generate", req, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// RequireModel checks that the daemon answers and has model pulled.
func (d *Daemon) RequireModel(ctx context.Context, model string) error {
	var tags Tags
	if err := d.http.Get(ctx, "ping", d.baseURL+"/api/tags", &tags); err != nil {
		return err
	}
	for _, m := range tags.Models {
		if HasModel(m.Name, model) {
			return nil
		}
	}
	return fmt.Errorf("ollama: model %q is not pulled, run `ollama pull %s`", model, model)
}

// HasModel matches a requested name against a pulled one; an untagged name
// means ":latest".
func HasModel(pulled, want string) bool {
	if pulled == want {
		return true
	}
	name, tag, found := strings.Cut(pulled, ":")
	return found && tag == "latest" && name == want
}
