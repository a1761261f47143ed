package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/logger"
)

// ratingWeight scales a 0-5 rating into the similarity range.
const ratingWeight = 10.0

// CandidateScorer turns fused passage hits into ranked suppliers.
type CandidateScorer struct {
	directory driven.Directory
}

// NewCandidateScorer creates a scorer backed by the supplier directory.
func NewCandidateScorer(directory driven.Directory) *CandidateScorer {
	return &CandidateScorer{directory: directory}
}

// Score ranks the owners behind hits. Each owner appears once, represented by its
// most similar passage. Owners missing from the directory are dropped.
// Availability is only checked when window is non-nil.
//
// Verified owners rank before unverified ones. Within each group candidates are
// ordered by final score, then availability, then rating, then owner ID.
func (s *CandidateScorer) Score(
	ctx context.Context, hits []domain.SearchHit, window *domain.TimeWindow,
) ([]domain.RankedCandidate, error) {
	if len(hits) == 0 {
		return []domain.RankedCandidate{}, nil
	}
	if s.directory == nil {
		return nil, fmt.Errorf("%w: no directory configured", domain.ErrStoreUnavailable)
	}

	best := make(map[string]domain.SearchHit)
	var order []string
	for _, hit := range hits {
		prev, ok := best[hit.OwnerID]
		if !ok {
			order = append(order, hit.OwnerID)
		}
		if !ok || hit.Score > prev.Score {
			best[hit.OwnerID] = hit
		}
	}

	candidates := make([]domain.RankedCandidate, 0, len(order))
	for _, ownerID := range order {
		hit := best[ownerID]

		owner, err := s.directory.GetOwner(ctx, ownerID)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("owner %s not in directory, skipping", ownerID)
			continue
		}
		if err != nil {
			return nil, wrapStoreErr("get owner "+ownerID, err)
		}

		available := false
		if window != nil {
			available, err = s.directory.IsAvailable(ctx, ownerID, *window)
			if err != nil {
				return nil, wrapStoreErr("availability for "+ownerID, err)
			}
		}

		candidates = append(candidates, domain.RankedCandidate{
			OwnerID:       owner.ID,
			OwnerName:     owner.Name,
			Text:          hit.Text,
			Similarity:    hit.Score,
			AverageRating: owner.AverageRating,
			Verified:      owner.Verified,
			Available:     available,
			FinalScore:    hit.Score + owner.AverageRating/ratingWeight,
			Role:          hit.Role,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Verified != b.Verified {
			return a.Verified
		}
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.Available != b.Available {
			return a.Available
		}
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		return a.OwnerID < b.OwnerID
	})
	return candidates, nil
}

// wrapStoreErr wraps err with domain.ErrStoreUnavailable unless it already carries it.
func wrapStoreErr(op string, err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
