package scoring

// Coefficients weight the three normalized inputs of a composite score.
type Coefficients struct {
	Similarity float64
	Prior      float64
	Stake      float64
}

// Inputs are the per-cycle maps the engine combines, all keyed by uid.
type Inputs struct {
	Weights      map[int]float64
	Stake        map[int]float64
	Similarities map[int]float64
}

// ScoreRecord maps uid -> composite score in (0, 1].
type ScoreRecord map[int]float64

type Engine struct {
	coefficients Coefficients
	neutral      float64
	epsilon      float64
}

type EngineOption func(*Engine)
