package stats

import "gonum.org/v1/gonum/floats"

// DistanceFunc is a function type for computing distance between two vectors
type DistanceFunc func(a, b []float64) float64

// CosineSimilarity calculates the cosine similarity between two vectors:
// the dot product divided by the product of Euclidean norms.
//
// Two degenerate inputs yield exactly 0 rather than a computed value: a
// vector with zero norm (silence carries no direction), and vectors of
// different lengths. The latter masks dimensionality bugs, so callers that
// can validate their inputs should do so and treat a mismatch as a contract
// violation; the matcher boundary rejects mismatched sequences up front.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	denom := floats.Norm(a, 2) * floats.Norm(b, 2)
	if denom == 0 {
		return 0.0
	}

	return floats.Dot(a, b) / denom
}

// CosineDistance calculates cosine distance (1 - cosine similarity)
func CosineDistance(a, b []float64) float64 {
	return 1.0 - CosineSimilarity(a, b)
}
