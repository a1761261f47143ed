package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/core/ports/driving"
	"github.com/custodia-labs/tradematch/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

const summarySearchFailed = "Search failed: "

// SearchService runs the matching pipeline for a customer request.
type SearchService struct {
	store       driven.PassageStore
	embedder    *BatchEmbedder
	transformer *QueryTransformer
	router      *Router
	fuser       *Fuser
	scorer      *CandidateScorer
	summarizer  *Summarizer

	pipeline      domain.PipelineSettings
	numCandidates int
}

// NewSearchService creates a search service. store, embedder and scorer are required;
// the oracle-backed stages may be nil and then behave as if no oracle were configured.
func NewSearchService(
	store driven.PassageStore,
	embedder *BatchEmbedder,
	transformer *QueryTransformer,
	router *Router,
	fuser *Fuser,
	scorer *CandidateScorer,
	summarizer *Summarizer,
) *SearchService {
	if transformer == nil {
		transformer = NewQueryTransformer(nil, 0)
	}
	if router == nil {
		router = NewRouter(nil, nil, nil)
	}
	if fuser == nil {
		fuser = NewFuser(nil, nil)
	}
	if summarizer == nil {
		summarizer = NewSummarizer(nil)
	}
	return &SearchService{
		store:         store,
		embedder:      embedder,
		transformer:   transformer,
		router:        router,
		fuser:         fuser,
		scorer:        scorer,
		summarizer:    summarizer,
		pipeline:      domain.DefaultPipelineSettings(),
		numCandidates: domain.DefaultAppSettings().VectorStore.NumCandidates,
	}
}

// SetPipelineSettings replaces the defaults used when SearchOptions leave a field unset.
func (s *SearchService) SetPipelineSettings(settings domain.PipelineSettings) {
	s.pipeline = settings
}

// SetNumCandidates sets the index breadth passed to the store.
func (s *SearchService) SetNumCandidates(n int) {
	if n > 0 {
		s.numCandidates = n
	}
}

// Search returns ranked suppliers for query.
// Store and embedding failures surface; oracle failures degrade to defaults.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.RankedCandidate, error) {
	logger.Section("Search Execution")

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.RankedCandidate{}, nil
	}
	if s.store == nil || s.embedder == nil || s.scorer == nil {
		return nil, fmt.Errorf("%w: search is not configured", domain.ErrStoreUnavailable)
	}

	opts = s.withDefaults(opts)
	if opts.Window != nil {
		if err := opts.Window.Validate(); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	start := time.Now()
	logger.Event("SearchStart", map[string]any{"query": query, "strategy": opts.Strategy, "top_k": opts.TopK})

	// 1. Route and decompose
	var role string
	var subQueries []string
	var prep errgroup.Group
	prep.Go(func() error {
		role = s.router.Route(ctx, query)
		return nil
	})
	prep.Go(func() error {
		subQueries = s.transformer.Decompose(ctx, query)
		return nil
	})
	_ = prep.Wait() //nolint:errcheck // both stages absorb their own failures

	// 2. Expand
	queries := s.querySet(ctx, query, subQueries, opts.Expansions)
	logger.Debug("Searching %d queries with role filter %q", len(queries), role)

	// 3. Retrieve
	lists, err := s.retrieve(ctx, queries, domain.NewRoleFilter(role), opts.TopK)
	if err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}

	// 4. Fuse
	fused := s.fuser.Fuse(ctx, query, lists, opts.Strategy, opts.TopK)

	// 5. Score
	candidates, err := s.scorer.Score(ctx, fused, opts.Window)
	if err != nil {
		logger.Warn("Scoring failed: %v", err)
		return nil, fmt.Errorf("score: %w", err)
	}

	logger.Event("SearchDone", map[string]any{
		"query":    query,
		"results":  len(candidates),
		"duration": time.Since(start).Round(time.Millisecond),
	})
	return candidates, nil
}

// Summarize produces a recommendation over candidates.
func (s *SearchService) Summarize(
	ctx context.Context, query string, candidates []domain.RankedCandidate,
) domain.Summary {
	return s.summarizer.Summarize(ctx, query, candidates)
}

// Match runs Search and Summarize. On failure the error is returned together
// with an empty candidate list and a summary explaining the failure.
func (s *SearchService) Match(ctx context.Context, query string, opts domain.SearchOptions) (*domain.MatchResult, error) {
	candidates, err := s.Search(ctx, query, opts)
	if err != nil {
		return &domain.MatchResult{
			Candidates: []domain.RankedCandidate{},
			Summary: domain.Summary{
				KeyStrengths: []string{},
				Reasoning:    summarySearchFailed + err.Error(),
			},
		}, err
	}
	return &domain.MatchResult{
		Candidates: candidates,
		Summary:    s.Summarize(ctx, query, candidates),
	}, nil
}

// withDefaults fills unset options from the pipeline settings.
func (s *SearchService) withDefaults(opts domain.SearchOptions) domain.SearchOptions {
	if opts.TopK <= 0 {
		opts.TopK = s.pipeline.TopK
	}
	if opts.TopK <= 0 {
		opts.TopK = domain.DefaultPipelineSettings().TopK
	}
	if opts.Expansions <= 0 {
		opts.Expansions = s.pipeline.Expansions
	}
	if !opts.Strategy.IsValid() {
		opts.Strategy = s.pipeline.Strategy
	}
	if opts.Timeout <= 0 {
		opts.Timeout = s.pipeline.SearchTimeout
	}
	if opts.Timeout <= 0 {
		opts.Timeout = domain.DefaultPipelineSettings().SearchTimeout
	}
	return opts
}

// querySet expands the first sub-query and appends the remaining sub-queries.
// The first sub-query itself always leads. Duplicates are dropped ignoring case.
func (s *SearchService) querySet(ctx context.Context, query string, subQueries []string, expansions int) []string {
	if len(subQueries) == 0 {
		subQueries = []string{query}
	}

	candidates := []string{subQueries[0]}
	candidates = append(candidates, s.transformer.Expand(ctx, subQueries[0], expansions)...)
	candidates = append(candidates, subQueries[1:]...)

	seen := make(map[string]bool, len(candidates))
	queries := make([]string, 0, len(candidates))
	for _, q := range candidates {
		q = strings.TrimSpace(q)
		key := strings.ToLower(q)
		if q == "" || seen[key] {
			continue
		}
		seen[key] = true
		queries = append(queries, q)
	}
	return queries
}

// retrieve embeds and searches every query concurrently. Any failure or
// cancellation discards all partial results.
func (s *SearchService) retrieve(
	ctx context.Context, queries []string, filter domain.RoleFilter, topK int,
) ([][]domain.SearchHit, error) {
	lists := make([][]domain.SearchHit, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			vec, err := s.embedder.EmbedQuery(gctx, q)
			if err != nil {
				return fmt.Errorf("embed query %q: %w", q, err)
			}
			hits, err := s.store.Search(gctx, domain.VectorQuery{
				Vector:        vec,
				TopK:          topK,
				NumCandidates: s.numCandidates,
				Filter:        filter,
			})
			if err != nil {
				return wrapStoreErr("vector search", err)
			}
			lists[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search cancelled: %w", err)
	}
	return lists, nil
}
