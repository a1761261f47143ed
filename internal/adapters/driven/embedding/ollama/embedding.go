// Package ollama provides an embedding service adapter using a local Ollama server.
package ollama

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/tradematch/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = 768 // nomic-embed-text
)

// Config holds configuration for the Ollama embedding service.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions is the model's vector size; Ollama does not report it.
	Dimensions int
}

// EmbeddingService embeds passages and queries with POST /api/embed.
type EmbeddingService struct {
	api        *httpjson.Client
	model      string
	dimensions int
}

// embedRequest takes a batch in Input.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewEmbeddingService creates an Ollama embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	cfg.BaseURL = cmp.Or(cfg.BaseURL, DefaultBaseURL)

	return &EmbeddingService{
		api:        httpjson.New("ollama", cfg.BaseURL, cmp.Or(cfg.Timeout, DefaultTimeout)),
		model:      cmp.Or(cfg.Model, DefaultModel),
		dimensions: cmp.Or(cfg.Dimensions, DefaultDimensions),
	}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds texts in one request. Either every text gets a vector or the call fails.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embedResponse
	if err := s.api.Post(ctx, "/api/embed", embedRequest{Model: s.model, Input: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: got %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}
	for i, e := range resp.Embeddings {
		if len(e) == 0 {
			return nil, fmt.Errorf("ollama: empty embedding for input %d", i)
		}
	}
	return resp.Embeddings, nil
}

func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists local models, which checks connectivity without embedding anything.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx, "/api/tags")
}

func (s *EmbeddingService) Close() error {
	return nil
}
