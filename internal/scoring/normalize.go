package scoring

import (
	"gonum.org/v1/gonum/floats"
)

func L1Normalize(arr []float64) []float64 {
	result := make([]float64, len(arr))
	copy(result, arr)

	sum := floats.Sum(result)
	if sum > 0 {
		floats.Scale(1.0/sum, result)
	}

	return result
}

// MaxNormalize divides every value by the maximum, keeping positives positive.
func MaxNormalize(m map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(m))
	hi := 0.0
	for _, v := range m {
		hi = max(hi, v)
	}
	for k, v := range m {
		if hi > 0 {
			out[k] = v / hi
		} else {
			out[k] = v
		}
	}
	return out
}
