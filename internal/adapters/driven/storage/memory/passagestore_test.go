package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

func testPassages(owner, role string, n int) []domain.Passage {
	out := make([]domain.Passage, n)
	for i := range out {
		out[i] = domain.Passage{
			ID:        domain.PassageID(owner, i),
			OwnerID:   owner,
			Role:      role,
			Text:      "passage text for " + owner,
			Embedding: []float32{1, float32(i)},
			Position:  i,
		}
	}
	return out
}

func TestPassageStore_ReplaceOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewPassageStore()

	require.NoError(t, store.Replace(ctx, "s1", testPassages("s1", "plumber", 3)))
	require.NoError(t, store.Replace(ctx, "s1", testPassages("s1", "plumber", 2)))

	n, err := store.CountByOwner(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPassageStore_ReplaceEmptyClearsOwner(t *testing.T) {
	ctx := context.Background()
	store := NewPassageStore()

	require.NoError(t, store.Replace(ctx, "s1", testPassages("s1", "plumber", 2)))
	require.NoError(t, store.Replace(ctx, "s1", nil))

	n, _ := store.CountByOwner(ctx, "s1")
	assert.Zero(t, n)
}

func TestPassageStore_SearchFiltersByRole(t *testing.T) {
	ctx := context.Background()
	store := NewPassageStore()
	require.NoError(t, store.Replace(ctx, "s1", testPassages("s1", "plumber", 1)))
	require.NoError(t, store.Replace(ctx, "s2", testPassages("s2", "barber", 1)))

	hits, err := store.Search(ctx, domain.VectorQuery{
		Vector: []float32{1, 0},
		TopK:   3,
		Filter: domain.NewRoleFilter("barber"),
	})

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "s2", hits[0].OwnerID)
}

func TestPassageStore_SearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPassageStore().Search(ctx, domain.VectorQuery{Vector: []float32{1}, TopK: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPassageStore_ConcurrentReplaceNeverEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewPassageStore()
	require.NoError(t, store.Replace(ctx, "s1", testPassages("s1", "plumber", 4)))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = store.Replace(ctx, "s1", testPassages("s1", "plumber", 1+i%4))
		}
		close(stop)
	}()

	for {
		select {
		case <-stop:
			wg.Wait()
			return
		default:
		}
		hits, err := store.Search(ctx, domain.VectorQuery{Vector: []float32{1, 0}, TopK: 5})
		require.NoError(t, err)
		require.NotEmpty(t, hits)
	}
}
