package ollamaapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

func TestNew_BaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("", time.Second).BaseURL())
	assert.Equal(t, "http://ollama.ward:11434", New("http://ollama.ward:11434/", time.Second).BaseURL())
}

func TestEmbed_Batch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		var req EmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		out := EmbedResponse{}
		for range req.Input {
			out.Embeddings = append(out.Embeddings, []float32{1, 0})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer server.Close()

	vecs, err := New(server.URL, time.Second).Embed(context.Background(), "all-minilm", "a", "b")

	require.NoError(t, err)
	assert.Len(t, vecs, 2)
}

func TestGenerate_NeverStreams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		_ = json.NewEncoder(w).Encode(GenerateResponse{Response: "Gate B.", Done: true})
	}))
	defer server.Close()

	out, err := New(server.URL, time.Second).
		Generate(context.Background(), GenerateRequest{Model: "llama3.2", Prompt: "x", Stream: true})

	require.NoError(t, err)
	assert.Equal(t, "Gate B.", out)
}

func TestRequireModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(Tags{Models: []Model{{Name: "llama3.2:latest"}}})
	}))
	defer server.Close()
	d := New(server.URL, time.Second)

	assert.NoError(t, d.RequireModel(context.Background(), "llama3.2"))
	err := d.RequireModel(context.Background(), "mistral")
	assert.ErrorContains(t, err, "ollama pull mistral")
	assert.NotErrorIs(t, err, domain.ErrProvider)
}

func TestHasModel(t *testing.T) {
	assert.True(t, HasModel("nomic-embed-text", "nomic-embed-text"))
	assert.True(t, HasModel("nomic-embed-text:latest", "nomic-embed-text"))
	assert.False(t, HasModel("nomic-embed-text:v1.5", "nomic-embed-text"))
	assert.False(t, HasModel("all-minilm:latest", "nomic-embed-text"))
}
