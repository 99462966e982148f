package store

import (
	"fmt"
	"math"
)

// cosineSimilarity scores two vectors in [-1, 1]. A zero-magnitude vector
// scores 0 rather than erroring, since an all-zero embedding simply matches
// nothing.
func cosineSimilarity(a, b []float32) (float32, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("vectors cannot be empty")
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimensions differ: %d vs %d", len(a), len(b))
	}

	var dot, magA, magB float32
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0, nil
	}

	return dot / (float32(math.Sqrt(float64(magA))) * float32(math.Sqrt(float64(magB)))), nil
}
