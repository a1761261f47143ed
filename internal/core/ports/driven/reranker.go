package driven

import "context"

// Reranker orders documents by relevance to a query using an external model.
// This is an optional service - when nil, the external strategy keeps input order.
type Reranker interface {
	// Rerank returns up to topN results, best first, each pointing into documents.
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error)

	// ModelName returns the name of the rerank model being used.
	ModelName() string
}

// RerankResult is one entry of a reranked list.
type RerankResult struct {
	// Index is the position in the input documents.
	Index int

	// Score is the provider's relevance score.
	Score float64
}
