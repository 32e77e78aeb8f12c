package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
	"github.com/merkuze-health/merkuze/internal/logger"
)

// Default collection confirmation values.
const (
	DefaultConfirmInterval = time.Second
	DefaultConfirmTimeout  = 2 * time.Minute
)

// VectorIndex manages versioned physical collections behind a logical name.
// A physical collection accepts exactly one vector dimension; a dimension
// change always lands in a new collection named <logical>-d<dim>.
//
// EnsureCollection is not safe across processes. Callers serialise
// migrations externally.
type VectorIndex struct {
	store           driven.VectorStore
	confirmInterval time.Duration
	confirmTimeout  time.Duration
}

// VectorIndexOption configures a VectorIndex.
type VectorIndexOption func(*VectorIndex)

// WithConfirmPolling sets how often and how long EnsureCollection waits for
// a new collection to become visible.
func WithConfirmPolling(interval, timeout time.Duration) VectorIndexOption {
	return func(v *VectorIndex) {
		if interval > 0 {
			v.confirmInterval = interval
		}
		if timeout > 0 {
			v.confirmTimeout = timeout
		}
	}
}

// NewVectorIndex creates a vector index over store.
func NewVectorIndex(store driven.VectorStore, opts ...VectorIndexOption) *VectorIndex {
	v := &VectorIndex{
		store:           store,
		confirmInterval: DefaultConfirmInterval,
		confirmTimeout:  DefaultConfirmTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// CollectionName returns the canonical physical name for a logical
// collection at a dimension.
func CollectionName(logical string, dimension int) string {
	return logical + "-d" + strconv.Itoa(dimension)
}

// candidates returns the physical collections that belong to logical: the
// bare name and any <logical>-d<dim>[-v<n>].
func candidates(all []domain.CollectionInfo, logical string) []domain.CollectionInfo {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(logical) + `-d\d+(-v\d+)?$`)
	var out []domain.CollectionInfo
	for _, c := range all {
		if c.Name == logical || pattern.MatchString(c.Name) {
			out = append(out, c)
		}
	}
	return out
}

// pick chooses the collection to reuse for dimension: the canonical name,
// then the bare logical name, then any versioned name.
func pick(cands []domain.CollectionInfo, logical string, dimension int) *domain.CollectionInfo {
	canonical := CollectionName(logical, dimension)
	var bare, versioned *domain.CollectionInfo
	for i := range cands {
		c := &cands[i]
		if c.Dimension != dimension {
			continue
		}
		switch c.Name {
		case canonical:
			return c
		case logical:
			bare = c
		default:
			if versioned == nil {
				versioned = c
			}
		}
	}
	if bare != nil {
		return bare
	}
	return versioned
}

// EnsureCollection returns a collection for logical that accepts vectors of
// dimension, creating one if none exists. A new collection is confirmed
// visible before anything else happens. Only then, and only if retireStale
// is set, are the logical name's collections of other dimensions deleted.
func (v *VectorIndex) EnsureCollection(
	ctx context.Context,
	logical string,
	dimension int,
	retireStale bool,
) (*domain.CollectionHandle, error) {
	if logical == "" || dimension <= 0 {
		return nil, fmt.Errorf("ensure collection %q (dimension %d): %w", logical, dimension, domain.ErrInvalidInput)
	}

	all, err := v.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	cands := candidates(all, logical)

	handle := &domain.CollectionHandle{Logical: logical, Dimension: dimension}
	if existing := pick(cands, logical, dimension); existing != nil {
		logger.Debug("Reusing collection %s (dimension %d)", existing.Name, dimension)
		handle.Name = existing.Name
	} else {
		name := freeName(all, logical, dimension)
		logger.Info("Creating collection %s (dimension %d)", name, dimension)
		if err := v.store.CreateCollection(ctx, name, dimension, domain.MetricCosine); err != nil {
			return nil, fmt.Errorf("create collection %s: %w", name, err)
		}
		if err := v.confirm(ctx, name, dimension); err != nil {
			return nil, err
		}
		handle.Name = name
		handle.Created = true
	}

	if retireStale {
		handle.Retired = v.retire(ctx, cands, handle.Name, dimension)
	}
	return handle, nil
}

// freeName returns the canonical name, or the first -vN suffix not in use.
func freeName(all []domain.CollectionInfo, logical string, dimension int) string {
	taken := make(map[string]bool, len(all))
	for _, c := range all {
		taken[c.Name] = true
	}
	name := CollectionName(logical, dimension)
	if !taken[name] {
		return name
	}
	for n := 2; ; n++ {
		versioned := name + "-v" + strconv.Itoa(n)
		if !taken[versioned] {
			return versioned
		}
	}
}

// confirm polls until the store reports the collection with the expected
// dimension.
func (v *VectorIndex) confirm(ctx context.Context, name string, dimension int) error {
	ctx, cancel := context.WithTimeout(ctx, v.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(v.confirmInterval)
	defer ticker.Stop()

	for {
		info, err := v.store.DescribeCollection(ctx, name)
		switch {
		case err == nil && info.Dimension == dimension:
			logger.Debug("Collection %s confirmed", name)
			return nil
		case err == nil:
			return &domain.DimensionMismatchError{Collection: name, Expected: dimension, Actual: info.Dimension}
		case !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrNotReady):
			return fmt.Errorf("confirm collection %s: %w", name, err)
		}

		select {
		case <-ctx.Done():
			return &domain.IndexUnavailableError{
				Backend:   "vector store",
				Op:        "confirm " + name,
				Retryable: true,
				Err:       ctx.Err(),
			}
		case <-ticker.C:
		}
	}
}

// retire deletes stale collections of other dimensions. Failures are logged
// and skipped; the active collection is never touched.
func (v *VectorIndex) retire(ctx context.Context, cands []domain.CollectionInfo, active string, dimension int) []string {
	var retired []string
	for _, c := range cands {
		if c.Name == active || c.Dimension == dimension {
			continue
		}
		if err := v.store.DeleteCollection(ctx, c.Name); err != nil {
			logger.Warn("Failed to retire collection %s: %v", c.Name, err)
			continue
		}
		logger.Info("Retired collection %s (dimension %d)", c.Name, c.Dimension)
		retired = append(retired, c.Name)
	}
	return retired
}

// Resolve finds the collection for logical at dimension without creating one.
// It returns domain.ErrNotFound if nothing has been ingested at that dimension.
func (v *VectorIndex) Resolve(ctx context.Context, logical string, dimension int) (*domain.CollectionHandle, error) {
	all, err := v.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	existing := pick(candidates(all, logical), logical, dimension)
	if existing == nil {
		return nil, fmt.Errorf("collection %s at dimension %d: %w", logical, dimension, domain.ErrNotFound)
	}
	return &domain.CollectionHandle{Logical: logical, Name: existing.Name, Dimension: dimension}, nil
}

// Upsert writes entries to the handle's collection.
func (v *VectorIndex) Upsert(ctx context.Context, h *domain.CollectionHandle, entries []domain.IndexedEntry) error {
	for _, e := range entries {
		if len(e.Vector) != h.Dimension {
			return &domain.DimensionMismatchError{Collection: h.Name, Expected: h.Dimension, Actual: len(e.Vector)}
		}
	}
	return v.store.Upsert(ctx, h.Name, entries)
}

// Query returns the topK nearest entries in non-increasing score order.
// A non-positive topK means domain.DefaultTopK.
func (v *VectorIndex) Query(
	ctx context.Context,
	h *domain.CollectionHandle,
	vector []float32,
	topK int,
	includeMetadata bool,
) (domain.QueryResult, error) {
	if len(vector) != h.Dimension {
		return nil, &domain.DimensionMismatchError{Collection: h.Name, Expected: h.Dimension, Actual: len(vector)}
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	matches, err := v.store.Query(ctx, h.Name, vector, topK, includeMetadata)
	if err != nil {
		return nil, err
	}
	return domain.QueryResult(matches), nil
}

// Stats returns the entry count and dimension of the handle's collection.
func (v *VectorIndex) Stats(ctx context.Context, h *domain.CollectionHandle) (*domain.IndexStats, error) {
	n, err := v.store.Count(ctx, h.Name)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", h.Name, err)
	}
	return &domain.IndexStats{Collection: h.Name, Count: n, Dimension: h.Dimension}, nil
}

// List returns every physical collection in the store.
func (v *VectorIndex) List(ctx context.Context) ([]domain.CollectionInfo, error) {
	return v.store.ListCollections(ctx)
}

// Reset deletes a physical collection and all of its entries.
func (v *VectorIndex) Reset(ctx context.Context, name string) error {
	logger.Info("Resetting collection %s", name)
	if err := v.store.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("reset %s: %w", name, err)
	}
	return nil
}
