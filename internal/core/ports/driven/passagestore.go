package driven

import (
	"context"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

// PassageStore persists passage vectors and answers nearest-neighbour queries.
// It exclusively owns passage storage.
type PassageStore interface {
	// Replace deletes every passage of ownerID and inserts passages in their place.
	// Concurrent searches observe either the old set or the new set, never an empty one.
	Replace(ctx context.Context, ownerID string, passages []domain.Passage) error

	// Search fetches up to TopK*2 nearest passages, drops those failing the role
	// filter and returns at most TopK hits ordered by similarity descending.
	Search(ctx context.Context, query domain.VectorQuery) ([]domain.SearchHit, error)

	// CountByOwner returns how many passages are stored for ownerID.
	CountByOwner(ctx context.Context, ownerID string) (int, error)

	// Close releases resources.
	Close() error
}
