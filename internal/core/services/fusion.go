package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/logger"
)

// RRFConstant is the k in 1/(k+rank+1). It damps the advantage of the very top ranks.
const RRFConstant = 60

const rerankTokenLimit = 128

var passageNumber = regexp.MustCompile(`\d+`)

// Fuser merges per-query hit lists into one ranking of at most topK hits.
type Fuser struct {
	oracle
	reranker driven.Reranker
}

// NewFuser creates a fuser. llm and reranker may be nil; the strategies that need
// them then keep the similarity order.
func NewFuser(llm driven.LLMService, reranker driven.Reranker) *Fuser {
	return &Fuser{
		oracle:   newOracle(llm),
		reranker: reranker,
	}
}

// Fuse applies strategy to lists, one list per searched query, and keeps topK hits.
// Unknown strategies behave as rrf. Fuse never fails.
func (f *Fuser) Fuse(
	ctx context.Context, query string, lists [][]domain.SearchHit, strategy domain.FusionStrategy, topK int,
) []domain.SearchHit {
	if topK <= 0 {
		topK = domain.DefaultPipelineSettings().TopK
	}

	var fused []domain.SearchHit
	switch strategy {
	case domain.FusionScore:
		fused = truncate(bestBySimilarity(lists), topK)
	case domain.FusionOracle:
		fused = f.oracleRerank(ctx, query, bestBySimilarity(lists), topK)
	case domain.FusionExternal:
		fused = f.externalRerank(ctx, query, bestBySimilarity(lists), topK)
	default:
		strategy = domain.FusionRRF
		fused = truncate(reciprocalRankFusion(lists, RRFConstant), topK)
	}

	logger.Event("ReRank", map[string]any{"strategy": strategy, "results": len(fused)})
	return fused
}

// reciprocalRankFusion sums 1/(k+rank+1) for every list a passage appears in.
// Ties keep the passage with the better similarity first.
func reciprocalRankFusion(lists [][]domain.SearchHit, k int) []domain.SearchHit {
	scores := make(map[string]float64)
	best := make(map[string]domain.SearchHit)

	for _, list := range lists {
		for rank, hit := range list {
			scores[hit.PassageID] += 1.0 / float64(k+rank+1)
			if prev, ok := best[hit.PassageID]; !ok || hit.Score > prev.Score {
				best[hit.PassageID] = hit
			}
		}
	}

	results := make([]domain.SearchHit, 0, len(best))
	for id, hit := range best {
		hit.FusedScore = scores[id]
		results = append(results, hit)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].FusedScore != results[j].FusedScore {
			return results[i].FusedScore > results[j].FusedScore
		}
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PassageID < results[j].PassageID
	})
	return results
}

// bestBySimilarity collapses duplicate passages keeping the best similarity
// and sorts the result by similarity descending.
func bestBySimilarity(lists [][]domain.SearchHit) []domain.SearchHit {
	best := make(map[string]domain.SearchHit)
	for _, list := range lists {
		for _, hit := range list {
			if prev, ok := best[hit.PassageID]; !ok || hit.Score > prev.Score {
				best[hit.PassageID] = hit
			}
		}
	}

	results := make([]domain.SearchHit, 0, len(best))
	for _, hit := range best {
		hit.FusedScore = hit.Score
		results = append(results, hit)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PassageID < results[j].PassageID
	})
	return results
}

// oracleRerank asks the oracle for an ordering of hits by passage number.
// Numbers it omits follow in input order; unusable output keeps input order.
func (f *Fuser) oracleRerank(ctx context.Context, query string, hits []domain.SearchHit, topK int) []domain.SearchHit {
	if len(hits) == 0 || !f.available() {
		return truncate(hits, topK)
	}

	var passages strings.Builder
	for i, hit := range hits {
		fmt.Fprintf(&passages, "%d. %s\n", i+1, hit.Text)
	}

	prompt := fmt.Sprintf(f.template(driven.PromptRerank), query, passages.String())
	out, err := f.complete(ctx, prompt, driven.GenerateOptions{MaxTokens: rerankTokenLimit})
	if err != nil {
		logger.Warn("oracle re-rank failed, keeping similarity order: %v", err)
		return truncate(hits, topK)
	}

	order := parseOrdering(out, len(hits))
	if len(order) == 0 {
		logger.Warn("oracle re-rank output unusable, keeping similarity order: %q", out)
		return truncate(hits, topK)
	}
	return truncate(reorder(hits, order), topK)
}

// externalRerank delegates ordering to the reranker port.
func (f *Fuser) externalRerank(ctx context.Context, query string, hits []domain.SearchHit, topK int) []domain.SearchHit {
	if len(hits) == 0 || f.reranker == nil {
		return truncate(hits, topK)
	}

	docs := make([]string, len(hits))
	for i, hit := range hits {
		docs[i] = hit.Text
	}

	ranked, err := f.reranker.Rerank(ctx, query, docs, len(docs))
	if err != nil {
		logger.Warn("external re-rank failed, keeping similarity order: %v", err)
		return truncate(hits, topK)
	}

	order := make([]int, 0, len(ranked))
	scores := make(map[int]float64, len(ranked))
	for _, r := range ranked {
		if r.Index < 0 || r.Index >= len(hits) {
			continue
		}
		if _, dup := scores[r.Index]; dup {
			continue
		}
		scores[r.Index] = r.Score
		order = append(order, r.Index)
	}

	results := reorder(hits, order)
	for i := range results[:len(order)] {
		results[i].FusedScore = scores[order[i]]
	}
	return truncate(results, topK)
}

// parseOrdering extracts distinct 1-based passage numbers in [1, n] and
// returns them as 0-based indices in the order they appear.
func parseOrdering(out string, n int) []int {
	seen := make(map[int]bool)
	var order []int
	for _, m := range passageNumber.FindAllString(out, -1) {
		num, err := strconv.Atoi(m)
		if err != nil || num < 1 || num > n || seen[num] {
			continue
		}
		seen[num] = true
		order = append(order, num-1)
	}
	return order
}

// reorder places hits[order...] first, then the remaining hits in input order.
func reorder(hits []domain.SearchHit, order []int) []domain.SearchHit {
	used := make([]bool, len(hits))
	results := make([]domain.SearchHit, 0, len(hits))
	for _, idx := range order {
		results = append(results, hits[idx])
		used[idx] = true
	}
	for i, hit := range hits {
		if !used[i] {
			results = append(results, hit)
		}
	}
	return results
}

func truncate(hits []domain.SearchHit, n int) []domain.SearchHit {
	if len(hits) > n {
		return hits[:n]
	}
	return hits
}
