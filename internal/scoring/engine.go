// Package scoring combines similarity, prior weight and stake into composite peer scores.
package scoring

import (
	"math"

	"github.com/tensorplex-labs/eden/internal/utils/logger"
)

func WithCoefficients(c Coefficients) EngineOption {
	return func(e *Engine) {
		e.coefficients = c
	}
}

func WithNeutral(v float64) EngineOption {
	return func(e *Engine) {
		e.neutral = v
	}
}

func WithEpsilon(v float64) EngineOption {
	return func(e *Engine) {
		if v > 0 {
			e.epsilon = v
		}
	}
}

// NewEngine builds an Engine. Coefficients are rescaled to sum to 1;
// an all-zero or negative triple falls back to DefaultCoefficients.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		coefficients: DefaultCoefficients(),
		neutral:      NeutralScore,
		epsilon:      Epsilon,
	}
	for _, opt := range opts {
		opt(e)
	}

	c := e.coefficients
	if c.Similarity < 0 || c.Prior < 0 || c.Stake < 0 || c.Similarity+c.Prior+c.Stake == 0 {
		c = DefaultCoefficients()
	}
	n := L1Normalize([]float64{c.Similarity, c.Prior, c.Stake})
	e.coefficients = Coefficients{Similarity: n[0], Prior: n[1], Stake: n[2]}

	return e
}

func (e *Engine) Coefficients() Coefficients {
	return e.coefficients
}

// Score computes a composite for every uid in in.Similarities. Uids absent
// from the similarity map are not scored. Every emitted score is > 0 and the
// best peer scores exactly 1.
func (e *Engine) Score(in Inputs) ScoreRecord {
	out := make(ScoreRecord, len(in.Similarities))
	if len(in.Similarities) == 0 {
		return out
	}

	nWeights := NormalizeMap(in.Weights, e.neutral)
	nStake := NormalizeMap(in.Stake, e.neutral)
	nSim := NormalizeMap(in.Similarities, e.neutral)

	c := e.coefficients
	for uid := range in.Similarities {
		s := c.Prior*nWeights[uid] + c.Stake*nStake[uid] + c.Similarity*nSim[uid]
		if s <= 0 || math.IsNaN(s) {
			s = e.epsilon
		}
		out[uid] = s
	}

	out = MaxNormalize(out)

	logger.Sugar().Debugw("scored peers",
		"peers", len(out),
		"coefficients", c,
	)
	return out
}
