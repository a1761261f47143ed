package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/tradematch/internal/adapters/driven/storage/vectors"
	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

// Ensure PassageStore implements the interface.
var _ driven.PassageStore = (*PassageStore)(nil)

// PassageStore keeps passages in process memory and searches them by brute force.
type PassageStore struct {
	mu      sync.RWMutex
	byOwner map[string][]domain.Passage
}

// NewPassageStore creates a new in-memory passage store.
func NewPassageStore() *PassageStore {
	return &PassageStore{
		byOwner: make(map[string][]domain.Passage),
	}
}

// Replace swaps the owner's passages under a single write lock.
func (s *PassageStore) Replace(_ context.Context, ownerID string, passages []domain.Passage) error {
	copied := make([]domain.Passage, len(passages))
	for i, p := range passages {
		p.OwnerID = ownerID
		p.Embedding = append([]float32(nil), p.Embedding...)
		copied[i] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(copied) == 0 {
		delete(s.byOwner, ownerID)
		return nil
	}
	s.byOwner[ownerID] = copied
	return nil
}

// Search returns the nearest passages by cosine similarity.
func (s *PassageStore) Search(ctx context.Context, query domain.VectorQuery) ([]domain.SearchHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var all []domain.Passage
	for _, passages := range s.byOwner {
		all = append(all, passages...)
	}
	s.mu.RUnlock()

	return vectors.Nearest(query, all), nil
}

// CountByOwner returns how many passages are stored for ownerID.
func (s *PassageStore) CountByOwner(_ context.Context, ownerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byOwner[ownerID]), nil
}

// Close is a no-op.
func (s *PassageStore) Close() error {
	return nil
}
