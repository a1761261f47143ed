package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/logger"
)

// DefaultEmbedBatchSize is the number of texts sent per embedding request.
const DefaultEmbedBatchSize = 16

// BatchEmbedder embeds many texts in fixed-size batches. A request either
// yields one vector per text, in order, or fails as a whole.
type BatchEmbedder struct {
	embedder  driven.EmbeddingService
	batchSize int
}

// NewBatchEmbedder creates a batch embedder. Non-positive batchSize uses DefaultEmbedBatchSize.
func NewBatchEmbedder(embedder driven.EmbeddingService, batchSize int) *BatchEmbedder {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	return &BatchEmbedder{embedder: embedder, batchSize: batchSize}
}

// ModelName returns the underlying embedding model, or "" without a service.
func (b *BatchEmbedder) ModelName() string {
	if b.embedder == nil {
		return ""
	}
	return b.embedder.ModelName()
}

// EmbedAll returns one vector per text. Any failed batch aborts the request
// with domain.ErrEmbeddingFailed.
func (b *BatchEmbedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if b.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += b.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+b.batchSize, len(texts))
		batch, err := b.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			logger.Error("embedding batch %d-%d of %d failed: %v", start, end, len(texts), err)
			return nil, fmt.Errorf("%w: batch %d-%d: %w", domain.ErrEmbeddingFailed, start, end, err)
		}
		if len(batch) != end-start {
			logger.Error("embedding batch %d-%d of %d returned %d vectors", start, end, len(texts), len(batch))
			return nil, fmt.Errorf("%w: batch %d-%d returned %d vectors", domain.ErrEmbeddingFailed, start, end, len(batch))
		}
		vectors = append(vectors, batch...)
		logger.Debug("embedded batch %d-%d of %d", start, end, len(texts))
	}
	return vectors, nil
}

// EmbedQuery embeds a single search query.
func (b *BatchEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if b.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	vec, err := b.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}
	return vec, nil
}
