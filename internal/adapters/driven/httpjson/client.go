// Package httpjson is the JSON-over-HTTP client shared by the embedding,
// LLM and rerank provider adapters.
package httpjson

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
)

// maxErrorBody caps how much of an error reply is quoted in a StatusError.
const maxErrorBody = 512

// ErrRateLimited is returned when a provider answers 429 Too Many Requests.
var ErrRateLimited = errors.New("rate limited by provider")

// RateLimitError carries the provider's Retry-After hint.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: %v (retry after %s)", e.Provider, ErrRateLimited, e.RetryAfter)
	}
	return fmt.Sprintf("%s: %v", e.Provider, ErrRateLimited)
}

// Is makes errors.Is(err, ErrRateLimited) match.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// StatusError is a reply with a status other than 200 OK.
type StatusError struct {
	Provider   string
	StatusCode int

	// Message is the provider's error text, or the start of the raw body.
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Client posts JSON to one provider endpoint.
type Client struct {
	provider string
	baseURL  string
	http     *http.Client
	header   http.Header
}

// New creates a client for provider rooted at baseURL.
func New(provider, baseURL string, timeout time.Duration) *Client {
	return &Client{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		header:   http.Header{},
	}
}

// WithHeader adds a header sent on every request.
func (c *Client) WithHeader(key, value string) *Client {
	c.header.Set(key, value)
	return c
}

// WithBearer authenticates every request with an Authorization bearer token.
func (c *Client) WithBearer(token string) *Client {
	return c.WithHeader("Authorization", "Bearer "+token)
}

// Provider returns the name used in errors.
func (c *Client) Provider() string {
	return c.provider
}

// Post sends in as JSON to path and decodes a 200 reply into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), out)
}

// Get fetches path and decodes a 200 reply into out. A nil out discards the body.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, http.NoBody, out)
}

// Ping checks that path answers 200 OK.
func (c *Client) Ping(ctx context.Context, path string) error {
	if err := c.Get(ctx, path, nil); err != nil {
		return fmt.Errorf("%s: ping failed: %w", c.provider, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: send request: %w", c.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{Provider: c.provider, RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", c.provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Provider: c.provider, StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	return nil
}

// errorMessage extracts the message from the error shapes providers use:
// {"error":{"message":...}}, {"error":"..."} and {"message":"..."}.
func errorMessage(body []byte) string {
	var shaped struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &shaped) == nil {
		var nested struct {
			Message string `json:"message"`
		}
		var flat string
		switch {
		case json.Unmarshal(shaped.Error, &nested) == nil && nested.Message != "":
			return nested.Message
		case json.Unmarshal(shaped.Error, &flat) == nil && flat != "":
			return flat
		case shaped.Message != "":
			return shaped.Message
		}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return text
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
