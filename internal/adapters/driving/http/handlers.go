package http

import (
	"encoding/json"
	"net/http"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/logger"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is returned for every chat request, including failures.
type ChatResponse struct {
	Answer    string `json:"answer"`
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status     string           `json:"status"`
	Embedding  domain.Readiness `json:"embedding"`
	Collection string           `json:"collection,omitempty"`
	Count      int              `json:"count"`
	Dimension  int              `json:"dimension,omitempty"`
	IndexError string           `json:"index_error,omitempty"`
}

// DocumentResponse describes one admin document without its content.
type DocumentResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Filename   string `json:"filename"`
	UploadedAt string `json:"uploaded_at"`
}

// handleChat answers one message. Any decodable request gets 200 with an
// answer; internal failures surface only as the fallback text.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Debug("Rejected chat request: %v", err)
		writeJSON(w, http.StatusBadRequest, ChatResponse{
			Answer: s.cfg.FallbackMessage,
			Error:  "invalid request",
		})
		return
	}

	answer := s.ports.Chat.Answer(r.Context(), req.Message)
	logger.For(answer.RequestID).Debug("finished in state %s", answer.State)

	writeJSON(w, http.StatusOK, ChatResponse{
		Answer:    answer.Text,
		RequestID: answer.RequestID,
	})
}

// handleHealth reports embedder readiness and index statistics. It answers
// 503 until the embedder is ready.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Embedding: s.ports.Chat.Readiness(),
	}

	if s.ports.Index != nil {
		stats, err := s.ports.Index.Stats(r.Context())
		if err != nil {
			resp.IndexError = err.Error()
		} else {
			resp.Collection = stats.Collection
			resp.Count = stats.Count
			resp.Dimension = stats.Dimension
		}
	}

	status := http.StatusOK
	if resp.Embedding != domain.ReadinessReady {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// handleDocuments lists admin documents.
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	out := []DocumentResponse{}
	if s.ports.Document == nil {
		writeJSON(w, http.StatusOK, out)
		return
	}

	docs, err := s.ports.Document.List(r.Context())
	if err != nil {
		logger.Error("listing documents: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list documents"})
		return
	}

	for _, d := range docs {
		out = append(out, DocumentResponse{
			ID:         d.ID,
			Title:      d.Title,
			Filename:   d.Filename,
			UploadedAt: d.UploadedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
