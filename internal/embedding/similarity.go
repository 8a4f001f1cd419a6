package embedding

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// SentinelSimilarity is returned when a vector is empty or has zero norm.
const SentinelSimilarity = 0.00001

// Similarity is 1 - cosine distance between a and b, clamped to
// [SentinelSimilarity, 1]. The shorter vector is zero padded.
func Similarity(a, b []int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return SentinelSimilarity
	}

	n := max(len(a), len(b))
	va := toFloats(a, n)
	vb := toFloats(b, n)

	normA := floats.Norm(va, 2)
	normB := floats.Norm(vb, 2)
	if normA == 0 || normB == 0 || math.IsInf(normA, 0) || math.IsInf(normB, 0) {
		return SentinelSimilarity
	}

	floats.Scale(1/normA, va)
	floats.Scale(1/normB, vb)

	cos := floats.Dot(va, vb)
	if math.IsNaN(cos) {
		return SentinelSimilarity
	}
	return min(max(cos, SentinelSimilarity), 1)
}

func toFloats(v []int, n int) []float64 {
	out := make([]float64, n)
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
