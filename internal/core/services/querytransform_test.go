package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryTransformer_Expand_NoOracle(t *testing.T) {
	qt := NewQueryTransformer(nil, 0)

	assert.Equal(t, []string{"fix my sink"}, qt.Expand(context.Background(), "fix my sink", 3))
}

func TestQueryTransformer_Expand_ParsesLines(t *testing.T) {
	llm := replyWith("1. repair a leaking sink\n\n- plumber for kitchen sink\n* \"unclog a drain\"\n")
	qt := NewQueryTransformer(llm, 0)

	got := qt.Expand(context.Background(), "fix my sink", 3)

	assert.Equal(t, []string{"repair a leaking sink", "plumber for kitchen sink", "unclog a drain"}, got)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "fix my sink")
	assert.Contains(t, llm.prompts[0], "3")
}

func TestQueryTransformer_Expand_TruncatesToN(t *testing.T) {
	qt := NewQueryTransformer(replyWith("a\nb\nc\nd"), 0)

	assert.Equal(t, []string{"a", "b"}, qt.Expand(context.Background(), "q", 2))
}

func TestQueryTransformer_Expand_DefaultCount(t *testing.T) {
	llm := replyWith("a")
	qt := NewQueryTransformer(llm, 0)

	qt.Expand(context.Background(), "q", 0)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], fmt.Sprintf("Generate %d", DefaultExpansionCount))
}

func TestQueryTransformer_Expand_FailureFallsBack(t *testing.T) {
	qt := NewQueryTransformer(failingLLM(), 0)

	assert.Equal(t, []string{"q"}, qt.Expand(context.Background(), "q", 3))
	assert.Zero(t, qt.CacheLen(), "fallback results must not be cached")
}

func TestQueryTransformer_Expand_EmptyOutputFallsBack(t *testing.T) {
	qt := NewQueryTransformer(replyWith("  \n\n"), 0)

	assert.Equal(t, []string{"q"}, qt.Expand(context.Background(), "q", 3))
	assert.Zero(t, qt.CacheLen())
}

func TestQueryTransformer_Expand_CacheHit(t *testing.T) {
	llm := replyWith("x\ny")
	qt := NewQueryTransformer(llm, 0)
	ctx := context.Background()

	first := qt.Expand(ctx, "q", 2)
	first[0] = "mutated"
	second := qt.Expand(ctx, "q", 2)

	assert.Equal(t, 1, llm.calls())
	assert.Equal(t, []string{"x", "y"}, second)
}

func TestQueryTransformer_Expand_CacheKeyIncludesCountAndFingerprint(t *testing.T) {
	llm := replyWith("x\ny\nz")
	qt := NewQueryTransformer(llm, 0)
	ctx := context.Background()

	qt.Expand(ctx, "q", 2)
	qt.Expand(ctx, "q", 3)
	assert.Equal(t, 2, llm.calls())

	llm.fingerprint = "other-key"
	qt.Expand(ctx, "q", 2)
	assert.Equal(t, 3, llm.calls())
}

func TestQueryTransformer_Expand_EvictsLeastRecentlyUsed(t *testing.T) {
	llm := newMockLLM(func(prompt string) (string, error) {
		return "alt " + prompt[strings.LastIndex(prompt, " ")+1:], nil
	})
	qt := NewQueryTransformer(llm, 2)
	ctx := context.Background()

	qt.Expand(ctx, "a", 1)
	qt.Expand(ctx, "b", 1)
	qt.Expand(ctx, "a", 1) // a is now most recent
	qt.Expand(ctx, "c", 1) // evicts b
	assert.Equal(t, 3, llm.calls())
	assert.Equal(t, 2, qt.CacheLen())

	qt.Expand(ctx, "a", 1)
	assert.Equal(t, 3, llm.calls(), "a should still be cached")

	qt.Expand(ctx, "b", 1)
	assert.Equal(t, 4, llm.calls(), "b should have been evicted")
}

func TestQueryTransformer_Decompose(t *testing.T) {
	qt := NewQueryTransformer(replyWith("1) fix the sink\n2) rewire the kitchen\n3) paint\n4) tile\n5) extra"), 0)

	got := qt.Decompose(context.Background(), "big renovation")

	assert.Equal(t, []string{"fix the sink", "rewire the kitchen", "paint", "tile"}, got)
}

func TestQueryTransformer_Decompose_Fallbacks(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, []string{"q"}, NewQueryTransformer(nil, 0).Decompose(ctx, "q"))
	assert.Equal(t, []string{"q"}, NewQueryTransformer(failingLLM(), 0).Decompose(ctx, "q"))
	assert.Equal(t, []string{"q"}, NewQueryTransformer(replyWith(""), 0).Decompose(ctx, "q"))
}

func TestQueryTransformer_UsesPromptStore(t *testing.T) {
	llm := replyWith("x")
	qt := NewQueryTransformer(llm, 0)
	qt.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		"decompose": "CUSTOM %s",
	}})

	qt.Decompose(context.Background(), "q")

	require.Len(t, llm.prompts, 1)
	assert.Equal(t, "CUSTOM q", llm.prompts[0])
}
