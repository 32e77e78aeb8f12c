package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

const (
	defaultLimit = 5
	maxLimit     = 50
)

type AskInput struct {
	Question string `json:"question" jsonschema:"a question about the hospital's services"`
}

// AskOutput carries the fallback flag and the failed stage so a client can
// tell "the knowledge base has no answer" from "the pipeline broke".
type AskOutput struct {
	Answer      string   `json:"answer"`
	RequestID   string   `json:"request_id"`
	Fallback    bool     `json:"fallback"`
	FailedStage string   `json:"failed_stage,omitempty"`
	Sources     []string `json:"sources,omitempty"`
}

type SearchInput struct {
	Query string `json:"query" jsonschema:"text to find similar knowledge-base chunks for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, 1 to 50 (default 5)"`
}

type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

type SearchResultOutput struct {
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
	Text    string  `json:"text"`
}

func (s *Server) registerTools() {
	readOnly := &mcp.ToolAnnotations{ReadOnlyHint: true}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the hospital knowledge base",
		Annotations: readOnly,
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the knowledge-base chunks most similar to a query",
		Annotations: readOnly,
	}, s.handleSearch)
}

// handleAsk never returns a tool error: a pipeline failure yields the
// fallback answer, as it would for a chat user.
func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, in AskInput) (*mcp.CallToolResult, AskOutput, error) {
	answer := s.ports.Chat.Answer(ctx, in.Question)
	out := AskOutput{
		Answer:    answer.Text,
		RequestID: answer.RequestID,
		Fallback:  answer.Fallback,
	}
	if answer.State == domain.StateErrored {
		out.FailedStage = answer.FailedAt.String()
	}
	for _, m := range answer.Matches {
		out.Sources = append(out.Sources, m.ID)
	}
	return nil, out, nil
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	matches, err := s.ports.Chat.Retrieve(ctx, in.Query, min(limit, maxLimit))
	if err != nil {
		return nil, SearchOutput{}, err
	}

	out := SearchOutput{Results: make([]SearchResultOutput, 0, len(matches)), Count: len(matches)}
	for _, m := range matches {
		out.Results = append(out.Results, SearchResultOutput{ChunkID: m.ID, Score: m.Score, Text: m.Text})
	}
	return nil, out, nil
}
