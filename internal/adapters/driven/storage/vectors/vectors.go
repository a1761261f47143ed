// Package vectors holds the similarity and encoding helpers shared by the
// passage store adapters.
package vectors

import (
	"encoding/binary"
	"errors"
	"math"
	"sort"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

// ErrDimensionMismatch is returned when two vectors differ in length.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Zero vectors have similarity 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// Encode converts a float32 slice to little-endian bytes.
func Encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode converts little-endian bytes back to a float32 slice.
func Decode(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// Nearest scores passages against q and applies the store contract:
// the TopK*2 most similar passages are fetched, those failing the role filter
// are dropped, and at most TopK hits remain, most similar first.
// Passages whose dimension differs from the query are skipped.
func Nearest(q domain.VectorQuery, passages []domain.Passage) []domain.SearchHit {
	if q.TopK <= 0 || len(q.Vector) == 0 {
		return []domain.SearchHit{}
	}

	hits := make([]domain.SearchHit, 0, len(passages))
	for _, p := range passages {
		score, err := Cosine(q.Vector, p.Embedding)
		if err != nil {
			continue
		}
		hits = append(hits, HitFromPassage(p, score))
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].PassageID < hits[j].PassageID
	})

	return Project(q, hits)
}

// Project applies the fetch-then-filter step to hits already sorted by similarity.
func Project(q domain.VectorQuery, sorted []domain.SearchHit) []domain.SearchHit {
	fetch := q.TopK * 2
	if len(sorted) > fetch {
		sorted = sorted[:fetch]
	}

	out := make([]domain.SearchHit, 0, q.TopK)
	for _, hit := range sorted {
		if !q.Filter.Matches(hit.Role) {
			continue
		}
		out = append(out, hit)
		if len(out) == q.TopK {
			break
		}
	}
	return out
}

// HitFromPassage builds a search hit carrying the passage projection.
func HitFromPassage(p domain.Passage, score float64) domain.SearchHit {
	return domain.SearchHit{
		PassageID:      p.ID,
		OwnerID:        p.OwnerID,
		Role:           p.Role,
		Text:           p.Text,
		Score:          score,
		FusedScore:     score,
		SourceDocument: p.SourceDocument,
	}
}
