package driven

import "context"

// Chunker splits extracted page text into bounded, sentence-aligned passages.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// ChunkPages returns passage texts in page order. Passages never span pages.
	ChunkPages(ctx context.Context, pages []string) ([]string, error)
}
