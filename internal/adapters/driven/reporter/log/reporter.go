// Package log reports hidden answer-pipeline failures through the
// application logger.
package log

import (
	"context"
	"errors"
	"sync"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
	"github.com/merkuze-health/merkuze/internal/logger"
)

// Ensure Reporter implements the interface.
var _ driven.ErrorReporter = (*Reporter)(nil)

// Reporter writes each failure as an [ERROR] line and keeps per-kind counts.
type Reporter struct {
	mu     sync.Mutex
	counts map[string]int
}

// New creates a log reporter.
func New() *Reporter {
	return &Reporter{counts: make(map[string]int)}
}

// Report logs err with its request id and pipeline state.
func (r *Reporter) Report(_ context.Context, requestID string, state domain.AnswerState, err error) {
	if err == nil {
		return
	}
	kind := Kind(err)

	r.mu.Lock()
	r.counts[kind]++
	r.mu.Unlock()

	logger.Error("request %s failed at %s (%s): %v", requestID, state, kind, err)
}

// Counts returns a copy of the failure counts by kind.
func (r *Reporter) Counts() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Kind classifies err into the error taxonomy.
func Kind(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, domain.ErrNotReady):
		return "not_ready"
	case errors.Is(err, domain.ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, domain.ErrIndexUnavailable):
		return "index_unavailable"
	case errors.Is(err, domain.ErrProvider):
		return "provider"
	case errors.Is(err, domain.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, domain.ErrSchema):
		return "schema"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrLLMUnavailable):
		return "llm_unavailable"
	default:
		return "internal"
	}
}
