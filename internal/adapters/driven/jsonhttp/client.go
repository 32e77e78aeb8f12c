// Package jsonhttp is the JSON request/response plumbing shared by the
// providers that talk plain HTTP (Ollama, TEI, Anthropic, generic
// embedding endpoints).
// Every failure after the request is built comes back as a
// *domain.ProviderError carrying the provider name and operation.
package jsonhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// maxErrorBody caps how much of an error response ends up in the message.
const maxErrorBody = 4 << 10

// Client sends JSON requests for one provider and classifies failures.
type Client struct {
	http     *http.Client
	provider string
	header   http.Header
}

// New returns a client whose errors name provider and whose requests give up
// after timeout.
func New(provider string, timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}, provider: provider, header: http.Header{}}
}

// WithHeader sends name on every request. An empty value sends nothing.
func (c *Client) WithHeader(name, value string) *Client {
	if value != "" {
		c.header.Set(name, value)
	}
	return c
}

// WithBearer sends token as "Authorization: Bearer <token>". An empty token
// sends nothing.
func (c *Client) WithBearer(token string) *Client {
	if token == "" {
		return c
	}
	return c.WithHeader("Authorization", "Bearer "+token)
}

// Post sends in as JSON and decodes the 200 response into out.
func (c *Client) Post(ctx context.Context, op, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s %s: encode request: %w", c.provider, op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s %s: %w", c.provider, op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op, out)
}

// Get decodes the 200 response of url into out; a nil out only checks the status.
func (c *Client) Get(ctx context.Context, op, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s %s: %w", c.provider, op, err)
	}
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	req.Header.Set("Accept", "application/json")
	for name, values := range c.header {
		req.Header[name] = values
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(op, true, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var err error = &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
		if resp.StatusCode == http.StatusTooManyRequests {
			err = fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
		}
		return c.fail(op, Retryable(resp.StatusCode), err)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.fail(op, false, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// Fail builds the provider error for problems found in a decoded response.
func (c *Client) Fail(op string, err error) error {
	return c.fail(op, false, err)
}

func (c *Client) fail(op string, retryable bool, err error) error {
	return &domain.ProviderError{Provider: c.provider, Op: op, Retryable: retryable, Err: err}
}

// Retryable reports whether a status is worth retrying: rate limits and
// server-side failures.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// StatusError is a non-200 answer with the start of its body.
type StatusError struct {
	Code int
	Body string
}

// Error returns "status <code>: <body>".
func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// StatusCode returns the HTTP status behind err, or 0 when the server never
// answered.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
