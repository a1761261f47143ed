// Package openai provides an LLM service adapter using the OpenAI chat completions API.
package openai

import (
	"cmp"
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/tradematch/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/tradematch/internal/adapters/driven/llm"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 60 * time.Second
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is required.
	APIKey string

	// BaseURL may point at Azure OpenAI or any compatible server.
	BaseURL string

	Model   string
	Timeout time.Duration
}

// LLMService answers oracle prompts with POST /chat/completions.
type LLMService struct {
	api         *httpjson.Client
	model       string
	fingerprint string
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewLLMService creates an OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	cfg.BaseURL = cmp.Or(cfg.BaseURL, DefaultBaseURL)
	cfg.Model = cmp.Or(cfg.Model, DefaultLLMModel)
	cfg.Timeout = cmp.Or(cfg.Timeout, DefaultLLMTimeout)

	return &LLMService{
		api:         httpjson.New("openai", cfg.BaseURL, cfg.Timeout).WithBearer(cfg.APIKey),
		model:       cfg.Model,
		fingerprint: llm.Fingerprint("openai", cfg.Model, cfg.BaseURL, cfg.APIKey),
	}, nil
}

// Generate sends the optional system instruction and the prompt as one exchange.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if opts.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: opts.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	req := chatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Stop:        opts.StopWords,
	}

	var resp chatCompletionResponse
	if err := s.api.Post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no response choices returned")
	}
	return resp.Choices[0].Message.Content, nil
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
	return s.api.Ping(ctx, "/models")
}

func (s *LLMService) Close() error {
	return nil
}
