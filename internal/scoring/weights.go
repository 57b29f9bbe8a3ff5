package scoring

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
)

// DefaultWeightTolerance is the allowed drift of a weight sum from 1.0.
const DefaultWeightTolerance = 0.001

// Weights maps a criterion name to its relative importance.
// A valid mapping is non-negative and sums to 1.0.
type Weights map[string]float64

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

// Names returns the criteria in lexical order.
func (w Weights) Names() []string {
	names := make([]string, 0, len(w))
	for k := range w {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Validate checks that weights sum to 1.0 within tol and none are negative.
// A non-positive tol falls back to DefaultWeightTolerance.
func (w Weights) Validate(tol float64) error {
	if tol <= 0 {
		tol = DefaultWeightTolerance
	}
	if len(w) == 0 {
		return &InvalidWeightError{Reason: "no criteria weighted"}
	}
	for _, name := range w.Names() {
		v := w[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &InvalidWeightError{Reason: fmt.Sprintf("weight of %q is not finite", name)}
		}
		if v < 0 {
			return &InvalidWeightError{Reason: fmt.Sprintf("negative weight for %q: %f", name, v)}
		}
	}
	if math.Abs(w.Sum()-1.0) > tol {
		return &InvalidWeightError{Reason: fmt.Sprintf("weights sum to %.4f, must sum to 1.0", w.Sum())}
	}
	return nil
}

// WeightMode selects how raw slider values become a weight mapping.
type WeightMode string

const (
	// WeightModeManual takes the values as given; they must already sum to 1.
	WeightModeManual WeightMode = "manual"
	// WeightModeNormalize divides every value by the total.
	WeightModeNormalize WeightMode = "normalize"
	// WeightModeRandom ignores the values and draws a random mapping.
	WeightModeRandom WeightMode = "random"
)

// ParseWeightMode resolves a mode name. Empty means manual.
func ParseWeightMode(s string) (WeightMode, error) {
	switch WeightMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", WeightModeManual:
		return WeightModeManual, nil
	case WeightModeNormalize, "auto":
		return WeightModeNormalize, nil
	case WeightModeRandom:
		return WeightModeRandom, nil
	default:
		return "", fmt.Errorf("unknown weight mode %q", s)
	}
}

// ManualWeights validates raw as a finished weight mapping.
func ManualWeights(raw map[string]float64, tol float64) (Weights, error) {
	w := Weights(raw).Clone()
	if err := w.Validate(tol); err != nil {
		return nil, err
	}
	return w, nil
}

// NormalizeWeights rescales raw so that it sums to 1.
func NormalizeWeights(raw map[string]float64) (Weights, error) {
	if len(raw) == 0 {
		return nil, &InvalidWeightError{Reason: "no criteria weighted"}
	}
	var sum float64
	for name, v := range raw {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &InvalidWeightError{Reason: fmt.Sprintf("weight of %q must be a non-negative number", name)}
		}
		sum += v
	}
	if sum == 0 {
		return nil, &InvalidWeightError{Reason: "all weights are zero"}
	}
	w := make(Weights, len(raw))
	for name, v := range raw {
		w[name] = v / sum
	}
	return w, nil
}

// RandomWeights draws a uniform value per criterion and normalizes the draw.
func RandomWeights(criteria []string, rng *rand.Rand) (Weights, error) {
	if len(criteria) == 0 {
		return nil, &InvalidWeightError{Reason: "no criteria weighted"}
	}
	raw := make(map[string]float64, len(criteria))
	for _, c := range criteria {
		// Float64 can return 0; keep every criterion strictly positive.
		raw[c] = rng.Float64() + math.SmallestNonzeroFloat64
	}
	return NormalizeWeights(raw)
}

// DeriveWeights applies mode to raw. Random mode weights the given criteria.
func DeriveWeights(mode WeightMode, criteria []string, raw map[string]float64, tol float64, rng *rand.Rand) (Weights, error) {
	switch mode {
	case WeightModeManual, "":
		return ManualWeights(raw, tol)
	case WeightModeNormalize:
		return NormalizeWeights(raw)
	case WeightModeRandom:
		if len(raw) > 0 {
			criteria = Weights(raw).Names()
		}
		return RandomWeights(criteria, rng)
	default:
		return nil, fmt.Errorf("unknown weight mode %q", mode)
	}
}
