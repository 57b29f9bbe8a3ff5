package scoring

import (
	"log/slog"
)

// Evaluation is the complete output of one ranking call.
type Evaluation struct {
	Method     Method          `json:"method"`
	Weights    Weights         `json:"weights"`
	Ranking    ResultTable     `json:"ranking"`
	Normalized NormalizedTable `json:"normalized"`
}

// Engine dispatches scoring calls to the registered method and ranks the
// result. It holds no per-call state.
type Engine struct {
	registry Registry
	logger   *slog.Logger
}

// NewEngine creates an Engine over the given registry.
func NewEngine(registry Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{registry: registry, logger: logger}
}

// Evaluate scores ds with method m and weights w and returns the ranking
// together with the normalized table.
func (e *Engine) Evaluate(ds Dataset, m Method, w Weights) (*Evaluation, error) {
	scorer, err := e.registry.Get(m)
	if err != nil {
		return nil, err
	}
	scored, err := scorer.Score(ds, w)
	if err != nil {
		return nil, err
	}
	ranking := Rank(scored)

	if top, ok := ranking.Top(); ok {
		e.logger.Debug("ranking computed",
			"method", m,
			"rows", ds.Len(),
			"criteria", len(w),
			"top", top.ID,
			"top_score", top.Score,
		)
	}

	return &Evaluation{
		Method:     m,
		Weights:    w.Clone(),
		Ranking:    ranking,
		Normalized: scored.Normalized,
	}, nil
}

// Simulate reruns method m with criterion k's weight set to v and the other
// weights rescaled, and compares the result with the unperturbed ranking.
func (e *Engine) Simulate(ds Dataset, m Method, w Weights, k string, v float64) (*Sensitivity, error) {
	base, err := e.Evaluate(ds, m, w)
	if err != nil {
		return nil, err
	}
	adjusted, err := AdjustWeights(w, k, v)
	if err != nil {
		return nil, err
	}
	sim, err := e.Evaluate(ds, m, adjusted)
	if err != nil {
		return nil, err
	}

	out := &Sensitivity{
		Criterion:   k,
		Value:       v,
		BaseWeights: w.Clone(),
		Weights:     adjusted,
		Base:        base.Ranking,
		Simulated:   sim.Ranking,
		Shifts:      compareRankings(base.Ranking, sim.Ranking),
	}
	e.logger.Debug("sensitivity simulated",
		"method", m,
		"criterion", k,
		"from", w[k],
		"to", v,
		"changed", out.Changed(),
	)
	return out, nil
}
