package pinecone

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/merkuze-health/merkuze/internal/adapters/driven/vectorstore"
	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
	"github.com/merkuze-health/merkuze/internal/ratelimit"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Config holds configuration for the Pinecone store.
type Config struct {
	// APIKey authenticates every request (required).
	APIKey string

	// BaseURL is the control plane URL (default: https://api.pinecone.io).
	BaseURL string

	// Cloud and Region place new serverless indexes (default: aws, us-east-1).
	Cloud  string
	Region string

	// RequestsPerSecond throttles all calls (default: 10).
	RequestsPerSecond float64

	// HTTPClient overrides the transport.
	HTTPClient *http.Client
}

// Store implements driven.VectorStore over Pinecone serverless indexes.
type Store struct {
	client  *http.Client
	baseURL string
	apiKey  string
	cloud   string
	region  string
	limiter *ratelimit.Limiter

	mu    sync.RWMutex
	hosts map[string]indexModel
}

type indexStatus struct {
	Ready bool   `json:"ready"`
	State string `json:"state"`
}

type indexModel struct {
	Name      string      `json:"name"`
	Dimension int         `json:"dimension"`
	Metric    string      `json:"metric"`
	Host      string      `json:"host"`
	Status    indexStatus `json:"status"`
}

type listIndexesResponse struct {
	Indexes []indexModel `json:"indexes"`
}

type createIndexRequest struct {
	Name      string    `json:"name"`
	Dimension int       `json:"dimension"`
	Metric    string    `json:"metric"`
	Spec      indexSpec `json:"spec"`
}

type indexSpec struct {
	Serverless serverlessSpec `json:"serverless"`
}

type serverlessSpec struct {
	Cloud  string `json:"cloud"`
	Region string `json:"region"`
}

type vector struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors []vector `json:"vectors"`
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	IncludeValues   bool      `json:"includeValues"`
}

type queryResponse struct {
	Matches []struct {
		ID       string            `json:"id"`
		Score    float64           `json:"score"`
		Metadata map[string]string `json:"metadata"`
	} `json:"matches"`
}

type statsResponse struct {
	Dimension        int `json:"dimension"`
	TotalVectorCount int `json:"totalVectorCount"`
}

// NewStore creates a Pinecone store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("pinecone: %w: API key is required", domain.ErrInvalidInput)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Cloud == "" {
		cfg.Cloud = DefaultCloud
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &Store{
		client:  cfg.HTTPClient,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		cloud:   cfg.Cloud,
		region:  cfg.Region,
		limiter: newLimiter(cfg.RequestsPerSecond),
		hosts:   make(map[string]indexModel),
	}, nil
}

// ListCollections returns all indexes sorted by name.
func (s *Store) ListCollections(ctx context.Context) ([]domain.CollectionInfo, error) {
	var resp listIndexesResponse
	if err := s.do(ctx, http.MethodGet, s.baseURL+"/indexes", nil, &resp); err != nil {
		return nil, classify("list indexes", "", err)
	}

	infos := make([]domain.CollectionInfo, 0, len(resp.Indexes))
	for _, idx := range resp.Indexes {
		infos = append(infos, domain.CollectionInfo{Name: idx.Name, Dimension: idx.Dimension, Metric: idx.Metric})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// CreateCollection creates a serverless index. The index may not be ready
// when this returns; DescribeCollection reports domain.ErrNotReady until it is.
func (s *Store) CreateCollection(ctx context.Context, name string, dimension int, metric string) error {
	if name == "" || dimension <= 0 {
		return fmt.Errorf("create collection %q (dimension %d): %w", name, dimension, domain.ErrInvalidInput)
	}
	if metric == "" {
		metric = domain.MetricCosine
	}

	req := createIndexRequest{
		Name:      name,
		Dimension: dimension,
		Metric:    metric,
		Spec:      indexSpec{Serverless: serverlessSpec{Cloud: s.cloud, Region: s.region}},
	}
	if err := s.do(ctx, http.MethodPost, s.baseURL+"/indexes", req, nil); err != nil {
		return classify("create index", name, err)
	}
	return nil
}

func (s *Store) describe(ctx context.Context, name string) (indexModel, error) {
	var idx indexModel
	if err := s.do(ctx, http.MethodGet, s.baseURL+"/indexes/"+url.PathEscape(name), nil, &idx); err != nil {
		return idx, classify("describe index", name, err)
	}
	if idx.Status.Ready {
		s.mu.Lock()
		s.hosts[name] = idx
		s.mu.Unlock()
	}
	return idx, nil
}

// DescribeCollection returns an index's identity once it is ready to serve.
func (s *Store) DescribeCollection(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	idx, err := s.describe(ctx, name)
	if err != nil {
		return nil, err
	}
	if !idx.Status.Ready {
		return nil, fmt.Errorf("collection %s (%s): %w", name, idx.Status.State, errNotReady)
	}
	return &domain.CollectionInfo{Name: idx.Name, Dimension: idx.Dimension, Metric: idx.Metric}, nil
}

// DeleteCollection deletes an index.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if err := s.do(ctx, http.MethodDelete, s.baseURL+"/indexes/"+url.PathEscape(name), nil, nil); err != nil {
		return classify("delete index", name, err)
	}
	s.mu.Lock()
	delete(s.hosts, name)
	s.mu.Unlock()
	return nil
}

// index returns the cached data plane description, describing on a miss.
func (s *Store) index(ctx context.Context, name string) (indexModel, error) {
	s.mu.RLock()
	idx, ok := s.hosts[name]
	s.mu.RUnlock()
	if ok {
		return idx, nil
	}

	idx, err := s.describe(ctx, name)
	if err != nil {
		return idx, err
	}
	if !idx.Status.Ready {
		return idx, &domain.IndexUnavailableError{Backend: backendName, Op: "resolve host", Retryable: true, Err: errNotReady}
	}
	return idx, nil
}

// Upsert validates every entry and writes them in one request.
func (s *Store) Upsert(ctx context.Context, name string, entries []domain.IndexedEntry) error {
	idx, err := s.index(ctx, name)
	if err != nil {
		return err
	}
	if err := vectorstore.ValidateEntries(name, idx.Dimension, entries); err != nil {
		return err
	}

	req := upsertRequest{Vectors: make([]vector, len(entries))}
	for i, e := range entries {
		req.Vectors[i] = vector{ID: e.ID, Values: e.Vector, Metadata: e.Metadata}
	}
	if err := s.do(ctx, http.MethodPost, hostURL(idx.Host)+"/vectors/upsert", req, nil); err != nil {
		return classify("upsert", name, err)
	}
	return nil
}

// Query returns the topK most similar entries.
func (s *Store) Query(
	ctx context.Context,
	name string,
	vec []float32,
	topK int,
	includeMetadata bool,
) ([]domain.Match, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive: %w", domain.ErrInvalidInput)
	}
	idx, err := s.index(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(vec) != idx.Dimension {
		return nil, &domain.DimensionMismatchError{Collection: name, Expected: idx.Dimension, Actual: len(vec)}
	}

	var resp queryResponse
	req := queryRequest{Vector: vec, TopK: topK, IncludeMetadata: includeMetadata}
	if err := s.do(ctx, http.MethodPost, hostURL(idx.Host)+"/query", req, &resp); err != nil {
		return nil, classify("query", name, err)
	}

	matches := make([]domain.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		match := domain.Match{ID: m.ID, Score: m.Score}
		if includeMetadata {
			match.Text = m.Metadata[domain.MetadataText]
		}
		matches = append(matches, match)
	}
	vectorstore.SortMatches(matches)
	return matches, nil
}

// Count returns the number of vectors in an index.
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	idx, err := s.index(ctx, name)
	if err != nil {
		return 0, err
	}
	var resp statsResponse
	if err := s.do(ctx, http.MethodPost, hostURL(idx.Host)+"/describe_index_stats", struct{}{}, &resp); err != nil {
		return 0, classify("describe index stats", name, err)
	}
	return resp.TotalVectorCount, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}
