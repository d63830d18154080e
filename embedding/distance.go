package embedding

import (
	"fmt"
	"math"
)

// CosineSimilarity computes the cosine similarity between two vectors,
// returning a value in [-1, 1]. It returns an error if the vectors have
// different lengths, are empty, or if either vector has zero magnitude.
func CosineSimilarity(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding: cosine similarity dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("embedding: cosine similarity on empty vectors")
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0, fmt.Errorf("embedding: cosine similarity with zero-magnitude vector")
	}
	sim := dot / (math.Sqrt(na2) * math.Sqrt(nb2))
	// Guard against float drift just outside the mathematical range.
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return sim, nil
}
