// Package anthropic provides an LLM service adapter using the Anthropic messages API.
package anthropic

import (
	"cmp"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/custodia-labs/tradematch/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/tradematch/internal/adapters/driven/llm"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 60 * time.Second

	// defaultMaxTokens is sent when the caller sets no limit; the API requires one.
	defaultMaxTokens = 1024

	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService answers oracle prompts with POST /v1/messages.
type LLMService struct {
	api         *httpjson.Client
	model       string
	fingerprint string
}

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	StopSeqs    []string  `json:"stop_sequences,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewLLMService creates an Anthropic LLM service. The API key is required.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	cfg.BaseURL = cmp.Or(cfg.BaseURL, DefaultBaseURL)
	cfg.Model = cmp.Or(cfg.Model, DefaultModel)
	cfg.Timeout = cmp.Or(cfg.Timeout, DefaultTimeout)

	api := httpjson.New("anthropic", cfg.BaseURL, cfg.Timeout).
		WithHeader("x-api-key", cfg.APIKey).
		WithHeader("anthropic-version", anthropicVersion)

	return &LLMService{
		api:         api,
		model:       cfg.Model,
		fingerprint: llm.Fingerprint("anthropic", cfg.Model, cfg.BaseURL, cfg.APIKey),
	}, nil
}

// Generate sends prompt as a single user turn and joins the text blocks of the reply.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := messagesRequest{
		Model:       s.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		System:      opts.System,
		Temperature: opts.Temperature,
		StopSeqs:    opts.StopWords,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}

	var resp messagesResponse
	if err := s.api.Post(ctx, "/v1/messages", req, &resp); err != nil {
		return "", err
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", errors.New("anthropic: no text content returned")
	}
	return out.String(), nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Fingerprint identifies model, endpoint and key without revealing the key.
func (s *LLMService) Fingerprint() string {
	return s.fingerprint
}

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx, "/v1/models")
}

func (s *LLMService) Close() error {
	return nil
}

