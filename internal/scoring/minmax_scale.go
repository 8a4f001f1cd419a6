package scoring

import (
	"gonum.org/v1/gonum/floats"
)

// MinMaxScale maps scores onto [0,1]; equal inputs all become neutral.
func MinMaxScale(scores []float64, neutral float64) []float64 {
	result := make([]float64, len(scores))
	if len(scores) == 0 {
		return result
	}
	copy(result, scores)

	lo := floats.Min(result)
	hi := floats.Max(result)

	if hi != lo {
		floats.AddConst(-lo, result)
		floats.Scale(1.0/(hi-lo), result)
	} else {
		for i := range result {
			result[i] = neutral
		}
	}

	return result
}

// NormalizeMap min-max scales the values of m over the keys present in m.
func NormalizeMap(m map[int]float64, neutral float64) map[int]float64 {
	out := make(map[int]float64, len(m))
	if len(m) == 0 {
		return out
	}

	keys := make([]int, 0, len(m))
	vals := make([]float64, 0, len(m))
	for k, v := range m {
		keys = append(keys, k)
		vals = append(vals, v)
	}

	for i, v := range MinMaxScale(vals, neutral) {
		out[keys[i]] = v
	}
	return out
}
