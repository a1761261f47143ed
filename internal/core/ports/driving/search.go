package driving

import (
	"context"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

// SearchService matches customer requests to suppliers.
type SearchService interface {
	// Search returns ranked candidates for a natural-language request.
	// Store and embedding failures are returned; oracle failures are absorbed.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.RankedCandidate, error)

	// Summarize turns candidates into a structured recommendation. It never fails.
	Summarize(ctx context.Context, query string, candidates []domain.RankedCandidate) domain.Summary

	// Match runs Search then Summarize. On failure the summary explains the error.
	Match(ctx context.Context, query string, opts domain.SearchOptions) (*domain.MatchResult, error)
}
