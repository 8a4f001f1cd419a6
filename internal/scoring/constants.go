package scoring

const (
	// NeutralScore is what min-max scaling yields when every value is equal.
	NeutralScore = 0.5
	// Epsilon replaces non-positive composite scores.
	Epsilon = 1e-6
)

func DefaultCoefficients() Coefficients {
	return Coefficients{
		Similarity: 0.4,
		Prior:      0.35,
		Stake:      0.25,
	}
}
