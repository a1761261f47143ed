package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

var sampleCandidates = []domain.RankedCandidate{
	{OwnerID: "s1", OwnerName: "Ann Pipes", Text: "Licensed plumber, 10 years.", AverageRating: 4.5, Verified: true},
	{OwnerID: "s2", Text: "Handyman."},
}

func TestSummarizer_ParsesJSON(t *testing.T) {
	llm := replyWith(`{"candidate_name": "Ann Pipes", "key_strengths": ["licensed", "experienced"], "reasoning": "Best fit."}`)

	got := NewSummarizer(llm).Summarize(context.Background(), "fix sink", sampleCandidates)

	assert.Equal(t, "Ann Pipes", got.CandidateName)
	assert.Equal(t, []string{"licensed", "experienced"}, got.KeyStrengths)
	assert.Equal(t, "Best fit.", got.Reasoning)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "fix sink")
	assert.Contains(t, llm.prompts[0], "- Ann Pipes (rating 4.5, verified): Licensed plumber, 10 years.")
	assert.Contains(t, llm.prompts[0], "- s2 (rating 0.0): Handyman.")
}

func TestSummarizer_StripsCodeFence(t *testing.T) {
	llm := replyWith("```json\n{\"candidate_name\": \"Ann\", \"reasoning\": \"ok\"}\n```")

	got := NewSummarizer(llm).Summarize(context.Background(), "q", sampleCandidates)

	assert.Equal(t, "Ann", got.CandidateName)
	assert.Equal(t, []string{}, got.KeyStrengths)
}

func TestSummarizer_Defaults(t *testing.T) {
	ctx := context.Background()

	empty := NewSummarizer(replyWith("{}")).Summarize(ctx, "q", nil)
	assert.Equal(t, SummaryNoDocuments, empty.Reasoning)
	assert.Empty(t, empty.CandidateName)
	assert.Equal(t, []string{}, empty.KeyStrengths)

	noOracle := NewSummarizer(nil).Summarize(ctx, "q", sampleCandidates)
	assert.True(t, strings.HasPrefix(noOracle.Reasoning, "Summary unavailable: "), noOracle.Reasoning)

	failed := NewSummarizer(failingLLM()).Summarize(ctx, "q", sampleCandidates)
	assert.True(t, strings.HasPrefix(failed.Reasoning, "Summary unavailable: "), failed.Reasoning)
	assert.Contains(t, failed.Reasoning, errMock.Error())

	garbled := NewSummarizer(replyWith("Ann is great")).Summarize(ctx, "q", sampleCandidates)
	assert.True(t, strings.HasPrefix(garbled.Reasoning, "Could not parse summary: "), garbled.Reasoning)
	assert.Empty(t, garbled.CandidateName)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`  {"a":1} `))
}
