package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Method identifies an MCDA aggregation method.
type Method string

const (
	MethodAHP    Method = "AHP"
	MethodSAW    Method = "SAW"
	MethodTOPSIS Method = "TOPSIS"
)

// Methods lists every supported method in display order.
func Methods() []Method {
	return []Method{MethodAHP, MethodSAW, MethodTOPSIS}
}

// ParseMethod resolves a method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ahp", "weighted-sum", "weighted_sum", "wsm":
		return MethodAHP, nil
	case "saw":
		return MethodSAW, nil
	case "topsis":
		return MethodTOPSIS, nil
	default:
		return "", fmt.Errorf("unknown method %q", s)
	}
}

// Scored is the unsorted output of a Scorer: the normalized table and one
// total score per row, in input order.
type Scored struct {
	Method     Method          `json:"method"`
	Normalized NormalizedTable `json:"normalized"`
	Scores     []float64       `json:"scores"`
}

// Scorer turns a dataset and a weight mapping into per-row totals.
// Implementations are pure and safe for concurrent use.
type Scorer interface {
	Method() Method
	Score(ds Dataset, w Weights) (*Scored, error)
}

// Options tune scorer construction.
type Options struct {
	WeightTolerance  float64
	DegeneratePolicy DegeneratePolicy
	// TOPSISUnweighted computes TOPSIS distances on the bare vector-normalized
	// values, ignoring weights.
	TOPSISUnweighted bool
}

// validateInput checks weights and dataset before any arithmetic and returns
// the weighted criteria in dataset column order, followed by weighted names
// the dataset does not declare.
func validateInput(ds Dataset, w Weights, tol float64) ([]string, error) {
	if err := w.Validate(tol); err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, errors.New("dataset has no records")
	}

	criteria := make([]string, 0, len(w))
	seen := make(map[string]bool, len(w))
	for _, c := range ds.Criteria {
		if _, ok := w[c]; ok && !seen[c] {
			criteria = append(criteria, c)
			seen[c] = true
		}
	}
	for _, c := range w.Names() {
		if !seen[c] {
			criteria = append(criteria, c)
		}
	}

	for _, c := range criteria {
		for _, r := range ds.Records {
			v, ok := r.Values[c]
			if !ok {
				return nil, &MissingCriterionError{Criterion: c, Record: r.ID}
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &InvalidValueError{Criterion: c, Record: r.ID}
			}
		}
	}
	return criteria, nil
}

// WeightedSum is the linear additive scorer shared by AHP and SAW:
// Skor Total = Σ norm(c) * w(c).
type WeightedSum struct {
	method     Method
	normalizer Normalizer
	tolerance  float64
}

// NewAHP returns the AHP-labelled weighted-sum scorer. Weights are taken as
// supplied; no pairwise comparison is performed.
func NewAHP(opts Options) *WeightedSum {
	return &WeightedSum{method: MethodAHP, normalizer: MinMax{Policy: opts.DegeneratePolicy}, tolerance: opts.WeightTolerance}
}

// NewSAW returns the simple additive weighting scorer.
func NewSAW(opts Options) *WeightedSum {
	return &WeightedSum{method: MethodSAW, normalizer: MinMax{Policy: opts.DegeneratePolicy}, tolerance: opts.WeightTolerance}
}

func (s *WeightedSum) Method() Method { return s.method }

func (s *WeightedSum) Score(ds Dataset, w Weights) (*Scored, error) {
	criteria, err := validateInput(ds, w, s.tolerance)
	if err != nil {
		return nil, err
	}
	table, cols, err := normalizeColumns(ds, criteria, s.normalizer)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, ds.Len())
	for _, c := range criteria {
		for i, v := range cols[c] {
			scores[i] += v * w[c]
		}
	}
	return &Scored{Method: s.method, Normalized: table, Scores: scores}, nil
}

// TOPSIS ranks by relative closeness to the ideal solution.
type TOPSIS struct {
	normalizer Normalizer
	tolerance  float64
	weighted   bool
}

// NewTOPSIS returns a TOPSIS scorer. Unless opts.TOPSISUnweighted is set,
// distances are measured on weight-scaled normalized values.
func NewTOPSIS(opts Options) *TOPSIS {
	return &TOPSIS{
		normalizer: Vector{Policy: opts.DegeneratePolicy},
		tolerance:  opts.WeightTolerance,
		weighted:   !opts.TOPSISUnweighted,
	}
}

func (s *TOPSIS) Method() Method { return MethodTOPSIS }

// Weighted reports whether distances use weight-scaled values.
func (s *TOPSIS) Weighted() bool { return s.weighted }

func (s *TOPSIS) Score(ds Dataset, w Weights) (*Scored, error) {
	criteria, err := validateInput(ds, w, s.tolerance)
	if err != nil {
		return nil, err
	}
	table, cols, err := normalizeColumns(ds, criteria, s.normalizer)
	if err != nil {
		return nil, err
	}

	n := ds.Len()
	distBest := make([]float64, n)
	distWorst := make([]float64, n)
	for _, c := range criteria {
		v := make([]float64, n)
		for i, x := range cols[c] {
			if s.weighted {
				x *= w[c]
			}
			v[i] = x
		}
		best, worst := v[0], v[0]
		for _, x := range v[1:] {
			best = math.Max(best, x)
			worst = math.Min(worst, x)
		}
		for i, x := range v {
			distBest[i] += (x - best) * (x - best)
			distWorst[i] += (x - worst) * (x - worst)
		}
	}

	scores := make([]float64, n)
	for i := range scores {
		db, dw := math.Sqrt(distBest[i]), math.Sqrt(distWorst[i])
		if db+dw == 0 {
			// Row coincides with both ideal points.
			scores[i] = 0.5
			continue
		}
		scores[i] = dw / (db + dw)
	}
	return &Scored{Method: MethodTOPSIS, Normalized: table, Scores: scores}, nil
}

// Registry maps each Method to its Scorer.
type Registry map[Method]Scorer

// NewRegistry builds one scorer per supported method.
func NewRegistry(opts Options) Registry {
	return Registry{
		MethodAHP:    NewAHP(opts),
		MethodSAW:    NewSAW(opts),
		MethodTOPSIS: NewTOPSIS(opts),
	}
}

// Get returns the scorer for m.
func (r Registry) Get(m Method) (Scorer, error) {
	s, ok := r[m]
	if !ok {
		return nil, fmt.Errorf("no scorer registered for method %q", m)
	}
	return s, nil
}
