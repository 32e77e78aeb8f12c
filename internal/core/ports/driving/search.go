package driving

import (
	"context"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// ChatService answers hospital questions grounded in the indexed knowledge base.
type ChatService interface {
	// Answer runs the retrieval and answer pipeline for one message.
	// It never fails: on any error the returned answer carries the fallback
	// text, and the cause is kept in Answer.Err.
	Answer(ctx context.Context, message string) *domain.Answer

	// Retrieve embeds query and returns the topK nearest chunks.
	Retrieve(ctx context.Context, query string, topK int) (domain.QueryResult, error)

	// Readiness reports whether the embedding provider can serve requests.
	Readiness() domain.Readiness
}
