package domain

import "time"

const unknownDescription = "Unknown"

// FusionStrategy selects how per-query result lists are merged into one ranking.
type FusionStrategy string

// Available fusion strategies.
const (
	// FusionRRF sums 1/(k+rank+1) across the expanded-query result lists.
	FusionRRF FusionStrategy = "rrf"

	// FusionScore sorts all hits by raw similarity.
	FusionScore FusionStrategy = "score"

	// FusionOracle asks the LLM to order the candidate passages.
	FusionOracle FusionStrategy = "oracle"

	// FusionExternal delegates ordering to an external reranking API.
	FusionExternal FusionStrategy = "external"
)

// IsValid returns true if the strategy is recognised.
func (s FusionStrategy) IsValid() bool {
	switch s {
	case FusionRRF, FusionScore, FusionOracle, FusionExternal:
		return true
	default:
		return false
	}
}

// RequiresLLM returns true if this strategy calls the text-completion oracle.
func (s FusionStrategy) RequiresLLM() bool {
	return s == FusionOracle
}

// String returns the string representation.
func (s FusionStrategy) String() string {
	return string(s)
}

// Description returns a human-readable description of the strategy.
func (s FusionStrategy) Description() string {
	switch s {
	case FusionRRF:
		return "Reciprocal rank fusion across expanded queries"
	case FusionScore:
		return "Similarity score sort"
	case FusionOracle:
		return "LLM re-rank"
	case FusionExternal:
		return "External reranker"
	default:
		return unknownDescription
	}
}

// AllFusionStrategies returns all available fusion strategies.
func AllFusionStrategies() []FusionStrategy {
	return []FusionStrategy{FusionRRF, FusionScore, FusionOracle, FusionExternal}
}

// VectorQuery is a nearest-neighbour request against the passage store.
type VectorQuery struct {
	// Vector is the query embedding.
	Vector []float32

	// TopK is the number of hits wanted after filtering.
	TopK int

	// NumCandidates is the index breadth considered by the store.
	NumCandidates int

	// Filter restricts hits by role.
	Filter RoleFilter
}

// SearchHit is one passage returned for one query.
type SearchHit struct {
	// PassageID identifies the matched passage.
	PassageID string

	// OwnerID is the supplier the passage belongs to.
	OwnerID string

	// Role is the passage's role label.
	Role string

	// Text is the passage text.
	Text string

	// Score is the similarity to the query, higher is closer.
	Score float64

	// FusedScore is set by fusion; it equals Score for strategies that do not compute one.
	FusedScore float64

	// SourceDocument is the name of the uploaded file.
	SourceDocument string
}

// RankedCandidate is a supplier after scoring.
type RankedCandidate struct {
	// OwnerID is the supplier identifier.
	OwnerID string

	// OwnerName is the display name from the directory.
	OwnerName string

	// Text is the best-matching passage.
	Text string

	// Similarity is the best similarity among the owner's hits.
	Similarity float64

	// AverageRating is the owner's rating, typically 0-5.
	AverageRating float64

	// Verified reports whether the owner is verified.
	Verified bool

	// Available reports whether the owner is free in the requested window.
	Available bool

	// FinalScore is Similarity + AverageRating/10.
	FinalScore float64

	// Role is the role label of the best-matching passage.
	Role string
}

// SearchOptions configures a supplier search.
type SearchOptions struct {
	// TopK is the maximum number of fused hits kept before scoring.
	TopK int

	// Strategy selects the fusion strategy. Empty uses the configured default.
	Strategy FusionStrategy

	// Window, when set, is used for availability checks.
	Window *TimeWindow

	// Expansions is the number of alternative phrasings generated for the query.
	Expansions int

	// Timeout overrides the configured request timeout when positive.
	Timeout time.Duration
}

// Summary is the structured recommendation for a customer.
type Summary struct {
	// CandidateName is the recommended supplier.
	CandidateName string

	// KeyStrengths lists why the candidate fits.
	KeyStrengths []string

	// Reasoning explains the recommendation or why none could be made.
	Reasoning string
}

// MatchResult bundles ranked candidates with their summary.
type MatchResult struct {
	// Candidates is the ranked list, possibly empty.
	Candidates []RankedCandidate

	// Summary is always populated, explaining failures when they occur.
	Summary Summary
}
