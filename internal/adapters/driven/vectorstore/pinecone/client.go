// Package pinecone provides a vector store backed by the Pinecone REST API.
// Index management goes through the control plane; reads and writes go to
// each index's own data plane host.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/ratelimit"
)

// Default configuration values.
const (
	DefaultBaseURL           = "https://api.pinecone.io"
	DefaultCloud             = "aws"
	DefaultRegion            = "us-east-1"
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerSecond = 10

	apiVersion  = "2024-07"
	backendName = "pinecone"
)

// errNotReady marks an index that exists but cannot serve yet.
var errNotReady = fmt.Errorf("index %w", domain.ErrNotReady)

// apiError is a non-2xx response from either plane.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// do sends one JSON request and decodes the JSON response into out.
func (s *Store) do(ctx context.Context, method, url string, in, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return &domain.IndexUnavailableError{Backend: backendName, Op: method, Retryable: true, Err: err}
	}

	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Api-Key", s.apiKey)
	req.Header.Set("X-Pinecone-API-Version", apiVersion)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &domain.IndexUnavailableError{Backend: backendName, Op: method + " " + url, Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusTooManyRequests {
			s.limiter.RecordRateLimit(retryAfter(resp.Header.Get("Retry-After")))
		}
		return &apiError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// classify maps transport and status failures onto the domain taxonomy.
func classify(op, name string, err error) error {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Status == http.StatusNotFound:
		return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	case apiErr.Status == http.StatusConflict:
		return fmt.Errorf("collection %s: %w", name, domain.ErrAlreadyExists)
	case apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%s %s: %w: %w", op, name, domain.ErrInvalidInput, err)
	default:
		return &domain.IndexUnavailableError{
			Backend:   backendName,
			Op:        op,
			Retryable: apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500,
			Err:       err,
		}
	}
}

func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// hostURL makes a data plane host absolute.
func hostURL(host string) string {
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return strings.TrimSuffix(host, "/")
	}
	return "https://" + host
}

// newLimiter builds the request throttle shared by both planes.
func newLimiter(rps float64) *ratelimit.Limiter {
	burst := int(rps)
	return ratelimit.New(rps, burst)
}
