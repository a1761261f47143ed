package services

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/logger"
)

// Query transformer defaults.
const (
	DefaultExpansionCount   = 3
	DefaultExpansionCache   = 128
	maxSubQueries           = 4
	expansionTemperature    = 0.7
	decompositionTokenLimit = 256
)

// expansionKey identifies a memoised expansion. The fingerprint keeps results
// from one provider, model or credential away from another.
type expansionKey struct {
	query       string
	n           int
	fingerprint string
}

// QueryTransformer rewrites a customer request into several search queries.
// Both operations fall back to the original query and never fail.
type QueryTransformer struct {
	oracle
	cache *lru.Cache[expansionKey, []string]
}

// NewQueryTransformer creates a transformer. llm may be nil.
// cacheSize bounds the expansion cache; non-positive uses DefaultExpansionCache.
func NewQueryTransformer(llm driven.LLMService, cacheSize int) *QueryTransformer {
	if cacheSize <= 0 {
		cacheSize = DefaultExpansionCache
	}
	// lru.New only fails for non-positive sizes.
	cache, _ := lru.New[expansionKey, []string](cacheSize) //nolint:errcheck // size checked above
	return &QueryTransformer{
		oracle: newOracle(llm),
		cache:  cache,
	}
}

// Expand returns up to n alternative phrasings of query.
// Successful results are memoised per (query, n, oracle fingerprint).
func (t *QueryTransformer) Expand(ctx context.Context, query string, n int) []string {
	query = strings.TrimSpace(query)
	if n <= 0 {
		n = DefaultExpansionCount
	}
	if !t.available() || query == "" {
		return []string{query}
	}

	key := expansionKey{query: query, n: n, fingerprint: t.fingerprint()}
	if cached, ok := t.cache.Get(key); ok {
		logger.Debug("expansion cache hit for %q", query)
		return append([]string(nil), cached...)
	}

	prompt := fmt.Sprintf(t.template(driven.PromptMultiQuery), n, query)
	out, err := t.complete(ctx, prompt, driven.GenerateOptions{Temperature: expansionTemperature})
	if err != nil {
		logger.Warn("query expansion failed, using original query: %v", err)
		return []string{query}
	}

	queries := parseLines(out)
	if len(queries) == 0 {
		logger.Warn("query expansion returned nothing, using original query")
		return []string{query}
	}
	if len(queries) > n {
		queries = queries[:n]
	}

	t.cache.Add(key, queries)
	logger.Event("MultiQueryGenerated", map[string]any{"original_query": query, "queries": queries})
	return append([]string(nil), queries...)
}

// Decompose splits a compound request into 2-4 sub-queries.
func (t *QueryTransformer) Decompose(ctx context.Context, query string) []string {
	query = strings.TrimSpace(query)
	if !t.available() || query == "" {
		return []string{query}
	}

	prompt := fmt.Sprintf(t.template(driven.PromptDecompose), query)
	out, err := t.complete(ctx, prompt, driven.GenerateOptions{MaxTokens: decompositionTokenLimit})
	if err != nil {
		logger.Warn("query decomposition failed, using original query: %v", err)
		return []string{query}
	}

	subQueries := parseLines(out)
	if len(subQueries) == 0 {
		return []string{query}
	}
	if len(subQueries) > maxSubQueries {
		subQueries = subQueries[:maxSubQueries]
	}

	logger.Event("QueryDecomposed", map[string]any{"original_query": query, "sub_queries": subQueries})
	return subQueries
}

// CacheLen returns the number of memoised expansions.
func (t *QueryTransformer) CacheLen() int {
	return t.cache.Len()
}
