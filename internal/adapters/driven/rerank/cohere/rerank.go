// Package cohere provides a Reranker backed by the Cohere rerank API.
package cohere

import (
	"cmp"
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/tradematch/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

var _ driven.Reranker = (*Reranker)(nil)

const (
	DefaultBaseURL = "https://api.cohere.com"
	DefaultModel   = "rerank-english-v3.0"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the Cohere reranker. APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Reranker calls POST /v2/rerank.
type Reranker struct {
	api   *httpjson.Client
	model string
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n,omitempty"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// New creates a Cohere reranker.
func New(cfg Config) (*Reranker, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("cohere: API key is required")
	}
	cfg.BaseURL = cmp.Or(cfg.BaseURL, DefaultBaseURL)
	cfg.Model = cmp.Or(cfg.Model, DefaultModel)
	cfg.Timeout = cmp.Or(cfg.Timeout, DefaultTimeout)

	return &Reranker{
		api:   httpjson.New("cohere", cfg.BaseURL, cfg.Timeout).WithBearer(cfg.APIKey),
		model: cfg.Model,
	}, nil
}

// Rerank returns results best first. Indices point into documents and
// are checked so a misbehaving endpoint cannot select a passage that was not sent.
func (r *Reranker) Rerank(ctx context.Context, query string, documents []string, topN int) ([]driven.RerankResult, error) {
	if len(documents) == 0 {
		return nil, nil
	}
	if topN <= 0 || topN > len(documents) {
		topN = len(documents)
	}

	req := rerankRequest{Model: r.model, Query: query, Documents: documents, TopN: topN}
	var resp rerankResponse
	if err := r.api.Post(ctx, "/v2/rerank", req, &resp); err != nil {
		return nil, err
	}

	results := make([]driven.RerankResult, 0, len(resp.Results))
	for _, res := range resp.Results {
		if res.Index < 0 || res.Index >= len(documents) {
			continue
		}
		results = append(results, driven.RerankResult{Index: res.Index, Score: res.RelevanceScore})
	}
	return results, nil
}

// ModelName returns the rerank model name.
func (r *Reranker) ModelName() string {
	return r.model
}
