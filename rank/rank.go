// Package rank scores the current point set against a query vector. The
// similarity ordering the UI consumes is a full ranking, so this is a
// deliberate full scan with precomputed magnitudes rather than a pruning
// index.
package rank

import (
	"fmt"
	"math"
	"sort"

	"github.com/viant/vec/search"

	"github.com/viant/neuromap/embedding"
)

// Result pairs one entry with its similarity score in [-1, 1]. Results are
// regenerated wholesale on every completed query.
type Result struct {
	Label string
	Index int
	Score float64
}

// Ranker holds labeled vectors and their precomputed magnitudes.
type Ranker struct {
	labels []string
	vecs   []embedding.Vector
	mags   []float32
	dim    int
}

// Build loads labels and vectors and precomputes magnitudes. It replaces any
// prior content wholesale.
func (r *Ranker) Build(labels []string, vectors []embedding.Vector) error {
	if len(labels) != len(vectors) {
		return fmt.Errorf("rank: labels and vectors length mismatch: %d != %d", len(labels), len(vectors))
	}
	if len(labels) == 0 {
		r.labels, r.vecs, r.mags, r.dim = nil, nil, nil, 0
		return nil
	}
	dim := len(vectors[0])
	for i := range vectors {
		if len(vectors[i]) != dim {
			return fmt.Errorf("rank: inconsistent vector dims %d vs %d", len(vectors[i]), dim)
		}
	}
	mags := make([]float32, len(vectors))
	for i := range vectors {
		mags[i] = search.Float32s(vectors[i]).Magnitude()
	}
	r.labels = append([]string(nil), labels...)
	r.vecs = append([]embedding.Vector(nil), vectors...)
	r.mags = mags
	r.dim = dim
	return nil
}

// Len returns the number of ranked entries.
func (r *Ranker) Len() int { return len(r.labels) }

// Rank scores every entry by cosine similarity against query and returns all
// results in descending score order. Ties keep insertion order (stable sort).
// Entries with zero magnitude are skipped; a zero-magnitude or empty query
// yields no results.
func (r *Ranker) Rank(query embedding.Vector) ([]Result, error) {
	if r.dim == 0 || len(r.vecs) == 0 {
		return nil, nil
	}
	if len(query) != r.dim {
		return nil, fmt.Errorf("rank: query dim %d != ranked dim %d", len(query), r.dim)
	}
	qm := float64(search.Float32s(query).Magnitude())
	if qm == 0 {
		return nil, nil
	}

	out := make([]Result, 0, len(r.vecs))
	for i := range r.vecs {
		if r.mags[i] == 0 {
			continue
		}
		sim := dot(query, r.vecs[i]) / (qm * float64(r.mags[i]))
		if math.IsNaN(sim) {
			continue
		}
		if sim > 1 {
			sim = 1
		} else if sim < -1 {
			sim = -1
		}
		out = append(out, Result{Label: r.labels[i], Index: i, Score: sim})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out, nil
}

// dot accumulates in float64 so the score does not depend on platform
// vector kernels.
func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
