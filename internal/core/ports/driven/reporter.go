package driven

import (
	"context"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// ErrorReporter receives failures that are hidden from end users.
type ErrorReporter interface {
	// Report records err raised while the request was in state.
	Report(ctx context.Context, requestID string, state domain.AnswerState, err error)
}
