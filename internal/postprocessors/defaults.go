// Package postprocessors builds the text processors that run after normalisation.
package postprocessors

import (
	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/postprocessors/chunker"
)

// NewChunker creates the passage chunker from pipeline settings.
// Unset values keep the chunker defaults.
func NewChunker(settings domain.PipelineSettings) driven.Chunker {
	var opts []chunker.Option
	if settings.MaxWords > 0 {
		opts = append(opts, chunker.WithMaxWords(settings.MaxWords))
	}
	if settings.MinChars > 0 {
		opts = append(opts, chunker.WithMinChars(settings.MinChars))
	}
	return chunker.New(opts...)
}
