// Package ollama provides an LLM service adapter using a local Ollama server.
package ollama

import (
	"cmp"
	"context"
	"time"

	"github.com/custodia-labs/tradematch/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/tradematch/internal/adapters/driven/llm"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL  = "http://localhost:11434"
	DefaultLLMModel = "llama3.2"

	// DefaultLLMTimeout is generous because local models can be slow to load.
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService answers oracle prompts with non-streaming POST /api/generate.
type LLMService struct {
	api         *httpjson.Client
	model       string
	fingerprint string
}

type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	System  string   `json:"system,omitempty"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// NewLLMService creates an Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	cfg.BaseURL = cmp.Or(cfg.BaseURL, DefaultBaseURL)
	cfg.Model = cmp.Or(cfg.Model, DefaultLLMModel)
	cfg.Timeout = cmp.Or(cfg.Timeout, DefaultLLMTimeout)

	return &LLMService{
		api:         httpjson.New("ollama", cfg.BaseURL, cfg.Timeout),
		model:       cfg.Model,
		fingerprint: llm.Fingerprint("ollama", cfg.Model, cfg.BaseURL, ""),
	}
}

// newOptions returns nil when every knob is at its zero value so the model defaults apply.
func newOptions(opts driven.GenerateOptions) *options {
	if opts.MaxTokens <= 0 && opts.Temperature <= 0 && len(opts.StopWords) == 0 {
		return nil
	}
	return &options{NumPredict: opts.MaxTokens, Temperature: opts.Temperature, Stop: opts.StopWords}
}

func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := generateRequest{
		Model:   s.model,
		Prompt:  prompt,
		System:  opts.System,
		Options: newOptions(opts),
	}

	var resp generateResponse
	if err := s.api.Post(ctx, "/api/generate", req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Fingerprint identifies model and server.
func (s *LLMService) Fingerprint() string {
	return s.fingerprint
}

// Ping lists local models, which checks connectivity without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx, "/api/tags")
}

func (s *LLMService) Close() error {
	return nil
}
