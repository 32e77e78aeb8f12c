package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or backend type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNotReady indicates a provider is still initialising.
	// Callers should retry later rather than treat it as a failure.
	ErrNotReady = errors.New("not ready")

	// ErrLLMUnavailable indicates the generation backend is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding provider is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector store is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Taxonomy kinds. Each typed error below matches its kind with errors.Is.

	// ErrSchema is the kind of SchemaError.
	ErrSchema = errors.New("schema error")

	// ErrEmptyInput is the kind of EmptyInputError.
	ErrEmptyInput = errors.New("empty input")

	// ErrProvider is the kind of ProviderError.
	ErrProvider = errors.New("provider error")

	// ErrDimensionMismatch is the kind of DimensionMismatchError.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrIndexUnavailable is the kind of IndexUnavailableError.
	ErrIndexUnavailable = errors.New("index unavailable")
)

// SchemaError reports malformed structured source data.
// Section is empty for document-level problems such as a parse failure.
type SchemaError struct {
	Section string
	Index   int // -1 when the problem is not tied to a list element
	Field   string
	Reason  string
}

func (e *SchemaError) Error() string {
	where := "document"
	if e.Section != "" {
		where = "section " + e.Section
		if e.Index >= 0 {
			where = fmt.Sprintf("%s[%d]", where, e.Index)
		}
	}
	if e.Field != "" {
		return fmt.Sprintf("schema error in %s: field %q: %s", where, e.Field, e.Reason)
	}
	return fmt.Sprintf("schema error in %s: %s", where, e.Reason)
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// EmptyInputError is returned when there is nothing to embed.
type EmptyInputError struct {
	What string
}

func (e *EmptyInputError) Error() string {
	if e.What == "" {
		return "empty input"
	}
	return "empty input: " + e.What
}

// Is reports whether target is ErrEmptyInput or ErrInvalidInput.
func (e *EmptyInputError) Is(target error) bool {
	return target == ErrEmptyInput || target == ErrInvalidInput
}

// ProviderError wraps a failure of an embedding or generation backend.
type ProviderError struct {
	Provider  string
	Op        string
	Retryable bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is reports whether target is ErrProvider.
func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// DimensionMismatchError reports a vector whose length disagrees with a collection
// or provider. It requires migration, never retry.
type DimensionMismatchError struct {
	Collection string
	Expected   int
	Actual     int
}

func (e *DimensionMismatchError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
	}
	return fmt.Sprintf("dimension mismatch in %s: expected %d, got %d", e.Collection, e.Expected, e.Actual)
}

// Is reports whether target is ErrDimensionMismatch.
func (e *DimensionMismatchError) Is(target error) bool { return target == ErrDimensionMismatch }

// IndexUnavailableError reports an unreachable or failing vector store.
type IndexUnavailableError struct {
	Backend   string
	Op        string
	Retryable bool
	Err       error
}

func (e *IndexUnavailableError) Error() string {
	return fmt.Sprintf("%s %s: index unavailable: %v", e.Backend, e.Op, e.Err)
}

func (e *IndexUnavailableError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIndexUnavailable.
func (e *IndexUnavailableError) Is(target error) bool { return target == ErrIndexUnavailable }

// IsRetryable reports whether err is a transient provider or index failure.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	var ie *IndexUnavailableError
	if errors.As(err, &ie) {
		return ie.Retryable
	}
	return false
}
