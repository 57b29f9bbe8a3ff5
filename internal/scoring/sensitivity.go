package scoring

import (
	"fmt"
	"math"
)

// AdjustWeights sets criterion k to v and rescales every other weight by
// (1 - v) / (1 - w[k]) so the mapping keeps its sum. w is not modified.
// The other weights must not all be zero.
func AdjustWeights(w Weights, k string, v float64) (Weights, error) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return nil, &InvalidWeightError{Reason: fmt.Sprintf("simulated weight %v outside [0,1]", v)}
	}
	base, ok := w[k]
	if !ok {
		return nil, &MissingCriterionError{Criterion: k}
	}
	var rest float64
	for name, x := range w {
		if name != k {
			rest += x
		}
	}
	if base == 1 || rest == 0 {
		return nil, &DegenerateWeightError{Criterion: k}
	}

	adjustment := (1 - v) / (1 - base)
	out := make(Weights, len(w))
	for name, x := range w {
		if name == k {
			out[name] = v
			continue
		}
		out[name] = x * adjustment
	}
	return out, nil
}

// RankShift describes how one destination moved between two rankings.
// Shift is positive when the destination climbed.
type RankShift struct {
	ID        string  `json:"destinasi"`
	BaseRank  int     `json:"base_rank"`
	NewRank   int     `json:"new_rank"`
	Shift     int     `json:"shift"`
	BaseScore float64 `json:"base_score"`
	NewScore  float64 `json:"new_score"`
}

// Sensitivity is the outcome of one weight perturbation.
type Sensitivity struct {
	Criterion   string      `json:"criterion"`
	Value       float64     `json:"value"`
	BaseWeights Weights     `json:"base_weights"`
	Weights     Weights     `json:"weights"`
	Base        ResultTable `json:"base"`
	Simulated   ResultTable `json:"simulated"`
	Shifts      []RankShift `json:"shifts"`
}

// Changed reports whether any destination moved.
func (s *Sensitivity) Changed() bool {
	for _, sh := range s.Shifts {
		if sh.Shift != 0 {
			return true
		}
	}
	return false
}

// compareRankings lists shifts in the order of the simulated ranking.
func compareRankings(base, simulated ResultTable) []RankShift {
	baseRows := make(map[string]RankedRow, len(base.Rows))
	for _, r := range base.Rows {
		baseRows[r.ID] = r
	}
	shifts := make([]RankShift, 0, len(simulated.Rows))
	for _, r := range simulated.Rows {
		b := baseRows[r.ID]
		shifts = append(shifts, RankShift{
			ID:        r.ID,
			BaseRank:  b.Rank,
			NewRank:   r.Rank,
			Shift:     b.Rank - r.Rank,
			BaseScore: b.Score,
			NewScore:  r.Score,
		})
	}
	return shifts
}
