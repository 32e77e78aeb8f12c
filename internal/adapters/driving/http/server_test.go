//nolint:noctx // Test file uses http.Get for convenience; context not required in tests
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports, cfg Config) *Server {
	t.Helper()
	s, err := NewServer(ports, cfg)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServer_RequiresChat(t *testing.T) {
	_, err := NewServer(&Ports{}, Config{})
	assert.ErrorIs(t, err, ErrMissingChatService)

	_, err = NewServer(nil, Config{})
	assert.ErrorIs(t, err, ErrMissingChatService)
}

func TestHandleChat_Answer(t *testing.T) {
	chat := &mockChatService{answer: &domain.Answer{
		RequestID: "req-1",
		Text:      "Cardiology is on floor 2.",
		State:     domain.StateAnswered,
	}}
	s := newTestServer(t, &Ports{Chat: chat}, Config{})

	rec := do(t, s.Handler(), http.MethodPost, "/api/chat", `{"message": "Where is cardiology?"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Cardiology is on floor 2.", resp.Answer)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Empty(t, resp.Error)
	assert.Equal(t, []string{"Where is cardiology?"}, chat.messages)
}

func TestHandleChat_FallbackIsStill200(t *testing.T) {
	chat := &mockChatService{answer: &domain.Answer{
		RequestID: "req-2",
		Text:      "Please call reception.",
		State:     domain.StateErrored,
		Fallback:  true,
		Err:       errors.New("llm exploded: secret-host:1234"),
	}}
	s := newTestServer(t, &Ports{Chat: chat}, Config{})

	rec := do(t, s.Handler(), http.MethodPost, "/api/chat", `{"message": "hi"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please call reception.")
	assert.NotContains(t, rec.Body.String(), "secret-host")
}

func TestHandleChat_MalformedJSON(t *testing.T) {
	chat := &mockChatService{}
	s := newTestServer(t, &Ports{Chat: chat}, Config{FallbackMessage: "Ask the front desk."})

	for _, body := range []string{`{"message": `, `not json`, ``} {
		rec := do(t, s.Handler(), http.MethodPost, "/api/chat", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		var resp ChatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Ask the front desk.", resp.Answer)
		assert.Equal(t, "invalid request", resp.Error)
	}
	assert.Empty(t, chat.messages)
}

func TestHandleChat_BodyTooLarge(t *testing.T) {
	chat := &mockChatService{}
	s := newTestServer(t, &Ports{Chat: chat}, Config{MaxBodyBytes: 16})

	rec := do(t, s.Handler(), http.MethodPost, "/api/chat", `{"message": "`+strings.Repeat("a", 100)+`"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, chat.messages)
}

func TestHandleChat_WrongMethod(t *testing.T) {
	s := newTestServer(t, &Ports{Chat: &mockChatService{}}, Config{})

	rec := do(t, s.Handler(), http.MethodGet, "/api/chat", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	t.Run("ready with stats", func(t *testing.T) {
		index := &mockIndexService{stats: &domain.IndexStats{Collection: "h-d4", Count: 3, Dimension: 4}}
		s := newTestServer(t, &Ports{Chat: &mockChatService{}, Index: index}, Config{})

		rec := do(t, s.Handler(), http.MethodGet, "/api/health", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, domain.ReadinessReady, resp.Embedding)
		assert.Equal(t, "h-d4", resp.Collection)
		assert.Equal(t, 3, resp.Count)
		assert.Equal(t, 4, resp.Dimension)
	})

	t.Run("loading embedder is 503", func(t *testing.T) {
		chat := &mockChatService{readiness: domain.ReadinessLoading}
		s := newTestServer(t, &Ports{Chat: chat}, Config{})

		rec := do(t, s.Handler(), http.MethodGet, "/api/health", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"loading"`)
		assert.Contains(t, rec.Body.String(), `"unavailable"`)
	})

	t.Run("index error is reported but not fatal", func(t *testing.T) {
		index := &mockIndexService{err: errors.New("store offline")}
		s := newTestServer(t, &Ports{Chat: &mockChatService{}, Index: index}, Config{})

		rec := do(t, s.Handler(), http.MethodGet, "/api/health", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "store offline")
	})
}

func TestHandleDocuments(t *testing.T) {
	t.Run("lists documents without content", func(t *testing.T) {
		docs := &mockDocumentService{documents: []domain.KnowledgeDocument{{
			ID: "doc-1", Title: "Pharmacy", Filename: "pharmacy.json", Content: "body",
			UploadedAt: time.Date(2024, 4, 5, 6, 7, 8, 0, time.UTC),
		}}}
		s := newTestServer(t, &Ports{Chat: &mockChatService{}, Document: docs}, Config{})

		rec := do(t, s.Handler(), http.MethodGet, "/api/documents", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []DocumentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, DocumentResponse{
			ID: "doc-1", Title: "Pharmacy", Filename: "pharmacy.json", UploadedAt: "2024-04-05T06:07:08Z",
		}, resp[0])
		assert.NotContains(t, rec.Body.String(), `"body"`)
	})

	t.Run("no repository gives empty list", func(t *testing.T) {
		s := newTestServer(t, &Ports{Chat: &mockChatService{}}, Config{})

		rec := do(t, s.Handler(), http.MethodGet, "/api/documents", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("repository error is 500", func(t *testing.T) {
		docs := &mockDocumentService{err: errors.New("disk")}
		s := newTestServer(t, &Ports{Chat: &mockChatService{}, Document: docs}, Config{})

		rec := do(t, s.Handler(), http.MethodGet, "/api/documents", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, &Ports{Chat: &mockChatService{}}, Config{
		AllowedOrigins: []string{"https://hospital.example"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://hospital.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "https://hospital.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RunAndShutdown(t *testing.T) {
	chat := &mockChatService{answer: &domain.Answer{Text: "ok"}}
	s := newTestServer(t, &Ports{Chat: chat}, Config{Addr: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return s.Addr() != "127.0.0.1:0"
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + s.Addr() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_StartPortInUse(t *testing.T) {
	first := newTestServer(t, &Ports{Chat: &mockChatService{}}, Config{Addr: "127.0.0.1:0"})
	require.NoError(t, first.Start())
	defer first.Stop()

	second := newTestServer(t, &Ports{Chat: &mockChatService{}}, Config{Addr: first.Addr()})
	err := second.Start()
	assert.Error(t, err)
	assert.NoError(t, second.Stop())
}
