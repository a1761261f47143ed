package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/logger"
)

// Fixed summary reasons.
const (
	SummaryNoDocuments = "No documents found"
	summaryUnavailable = "Summary unavailable: "
	summaryParseFailed = "Could not parse summary: "
)

const summaryTemperature = 0.2

// summaryJSON is the shape the oracle is asked to produce.
type summaryJSON struct {
	CandidateName string   `json:"candidate_name"`
	KeyStrengths  []string `json:"key_strengths"`
	Reasoning     string   `json:"reasoning"`
}

// Summarizer asks the oracle for a structured recommendation over ranked candidates.
// It never fails; every problem is reported through Summary.Reasoning.
type Summarizer struct {
	oracle
}

// NewSummarizer creates a summarizer. llm may be nil.
func NewSummarizer(llm driven.LLMService) *Summarizer {
	return &Summarizer{oracle: newOracle(llm)}
}

// Summarize produces a recommendation for query from candidates, best first.
func (s *Summarizer) Summarize(ctx context.Context, query string, candidates []domain.RankedCandidate) domain.Summary {
	if len(candidates) == 0 {
		return domain.Summary{KeyStrengths: []string{}, Reasoning: SummaryNoDocuments}
	}
	if !s.available() {
		return unavailableSummary(domain.ErrLLMUnavailable)
	}

	prompt := fmt.Sprintf(s.template(driven.PromptSummary), query, formatCandidates(candidates))
	out, err := s.complete(ctx, prompt, driven.GenerateOptions{Temperature: summaryTemperature})
	if err != nil {
		logger.Warn("summary failed: %v", err)
		return unavailableSummary(err)
	}

	var parsed summaryJSON
	if err := json.Unmarshal([]byte(stripCodeFence(out)), &parsed); err != nil {
		logger.Warn("summary output is not valid JSON: %v", err)
		return domain.Summary{
			KeyStrengths: []string{},
			Reasoning:    summaryParseFailed + fmt.Errorf("%w: %w", domain.ErrParse, err).Error(),
		}
	}

	if parsed.KeyStrengths == nil {
		parsed.KeyStrengths = []string{}
	}
	return domain.Summary{
		CandidateName: parsed.CandidateName,
		KeyStrengths:  parsed.KeyStrengths,
		Reasoning:     parsed.Reasoning,
	}
}

// formatCandidates renders one bullet per candidate for the summary prompt.
func formatCandidates(candidates []domain.RankedCandidate) string {
	var b strings.Builder
	for _, c := range candidates {
		name := c.OwnerName
		if name == "" {
			name = c.OwnerID
		}
		verified := ""
		if c.Verified {
			verified = ", verified"
		}
		fmt.Fprintf(&b, "- %s (rating %.1f%s): %s\n", name, c.AverageRating, verified, c.Text)
	}
	return b.String()
}

func unavailableSummary(err error) domain.Summary {
	return domain.Summary{KeyStrengths: []string{}, Reasoning: summaryUnavailable + err.Error()}
}
