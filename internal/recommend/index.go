package recommend

import (
	"fmt"
	"math"
	"sort"

	"hotel_recommender/internal/domain"
	"hotel_recommender/internal/features"
)

// distances closer than this are treated as equal and ordered by the
// secondary keys
const distancePrecision = 1e12

// Neighbor is one index hit.
type Neighbor struct {
	Index    int
	Distance float64
	// Euclid breaks cosine ties between collinear vectors.
	Euclid float64
}

// Index is a brute-force cosine-distance index over a fixed matrix.
type Index struct {
	vectors []features.Vector
	norms   []float64
	dim     int
}

// NewIndex builds an index over vectors. All vectors must share one length.
func NewIndex(vectors []features.Vector) (*Index, error) {
	if len(vectors) == 0 {
		return nil, domain.ErrModelNotFitted
	}
	dim := len(vectors[0])
	norms := make([]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d components, want %d", domain.ErrSchemaMismatch, i, len(v), dim)
		}
		norms[i] = norm(v)
	}
	return &Index{vectors: vectors, norms: norms, dim: dim}, nil
}

// Len returns the number of indexed vectors.
func (x *Index) Len() int { return len(x.vectors) }

// Query returns the min(k, Len()) nearest vectors to q, nearest first.
// Equal distances keep insertion order after the Euclidean tie-break.
func (x *Index) Query(q features.Vector, k int) ([]Neighbor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", domain.ErrInvalidParameter, k)
	}
	if len(q) != x.dim {
		return nil, fmt.Errorf("%w: query has %d components, index has %d", domain.ErrSchemaMismatch, len(q), x.dim)
	}
	qn := norm(q)
	hits := make([]Neighbor, len(x.vectors))
	for i, v := range x.vectors {
		hits[i] = Neighbor{
			Index:    i,
			Distance: cosineDistance(q, v, qn, x.norms[i]),
			Euclid:   euclidean(q, v),
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].Distance != hits[b].Distance {
			return hits[a].Distance < hits[b].Distance
		}
		return hits[a].Euclid < hits[b].Euclid
	})
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// cosineDistance is 1 - cos(a, b), rounded to 1e-12. A zero vector is at
// distance 1 from everything.
func cosineDistance(a, b []float64, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 1
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	d := 1 - dot/(na*nb)
	return math.Round(d*distancePrecision) / distancePrecision
}

func euclidean(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}

func norm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}
