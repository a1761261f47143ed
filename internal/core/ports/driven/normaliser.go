package driven

import (
	"context"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

// Normaliser extracts page text from an uploaded document.
// Each normaliser handles specific MIME types (e.g., PDF, plain text).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers return 50-89, fallbacks 1-9.
	Priority() int

	// Normalise extracts page text. Failure to open or parse the document
	// wraps domain.ErrDocumentUnreadable.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled separately, page by page.
type NormaliseResult struct {
	// Title is a human-readable title guessed from content or URI.
	Title string

	// Pages holds the extracted text of each page in order.
	Pages []string
}

// NormaliserRegistry selects the appropriate normaliser for a document.
type NormaliserRegistry interface {
	// Normalise transforms a raw document using the best matching normaliser.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}
