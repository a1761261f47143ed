package postprocessors

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

func TestNewChunker_UsesSettings(t *testing.T) {
	c := NewChunker(domain.PipelineSettings{MaxWords: 5, MinChars: 3})
	assert.Equal(t, "chunker", c.Name())

	page := "One two three four five. Six seven eight nine ten. Tiny."
	chunks, err := c.ChunkPages(context.Background(), []string{page})
	require.NoError(t, err)
	assert.Equal(t, []string{"One two three four five.", "Six seven eight nine ten.", "Tiny."}, chunks)
}

func TestNewChunker_Defaults(t *testing.T) {
	c := NewChunker(domain.PipelineSettings{})

	short := "Too short to keep."
	chunks, err := c.ChunkPages(context.Background(), []string{short})
	require.NoError(t, err)
	assert.Empty(t, chunks)

	long := strings.Repeat("We fix leaking taps quickly. ", 10)
	chunks, err = c.ChunkPages(context.Background(), []string{long})
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}
