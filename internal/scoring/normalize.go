package scoring

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DegeneratePolicy decides what a normalizer does with a column it cannot
// scale.
type DegeneratePolicy string

const (
	// PolicyFail returns a DegenerateColumnError.
	PolicyFail DegeneratePolicy = "fail"
	// PolicyZero maps every value of the column to 0.
	PolicyZero DegeneratePolicy = "zero"
)

// ParseDegeneratePolicy resolves a policy name. Empty means fail.
func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch DegeneratePolicy(s) {
	case "", PolicyFail:
		return PolicyFail, nil
	case PolicyZero:
		return PolicyZero, nil
	default:
		return "", errors.New("unknown degenerate policy " + s)
	}
}

var errEmptyColumn = errors.New("cannot normalize an empty column")

// Normalizer maps a raw column to a comparable scale. Implementations are
// pure: the input slice is never modified.
type Normalizer interface {
	Name() string
	Normalize(column []float64) ([]float64, error)
}

// MinMax scales a column to [0,1] by (x - min) / (max - min).
type MinMax struct {
	Policy DegeneratePolicy
}

func (MinMax) Name() string { return "min-max" }

func (n MinMax) Normalize(column []float64) ([]float64, error) {
	if len(column) == 0 {
		return nil, errEmptyColumn
	}
	lo, hi := floats.Min(column), floats.Max(column)
	out := make([]float64, len(column))
	if hi == lo {
		return degenerate(n.Policy, n.Name(), out)
	}
	copy(out, column)
	if span := hi - lo; !math.IsInf(span, 0) {
		floats.AddConst(-lo, out)
		floats.Scale(1/span, out)
		return out, nil
	}
	// The range overflows float64; halving every term keeps it finite.
	floats.Scale(0.5, out)
	floats.AddConst(-lo/2, out)
	floats.Scale(1/(hi/2-lo/2), out)
	return out, nil
}

// Vector divides a column by its Euclidean norm.
type Vector struct {
	Policy DegeneratePolicy
}

func (Vector) Name() string { return "vector" }

func (n Vector) Normalize(column []float64) ([]float64, error) {
	if len(column) == 0 {
		return nil, errEmptyColumn
	}
	out := make([]float64, len(column))
	norm := floats.Norm(column, 2)
	if norm == 0 || math.IsNaN(norm) {
		return degenerate(n.Policy, n.Name(), out)
	}
	copy(out, column)
	floats.Scale(1/norm, out)
	return out, nil
}

// degenerate returns zeros (already allocated by the caller) under PolicyZero.
func degenerate(p DegeneratePolicy, name string, zeros []float64) ([]float64, error) {
	if p == PolicyZero {
		return zeros, nil
	}
	return nil, &DegenerateColumnError{Normalization: name}
}

// normalizeColumns normalizes every criterion of ds and returns the table
// together with the normalized columns keyed by criterion.
func normalizeColumns(ds Dataset, criteria []string, n Normalizer) (NormalizedTable, map[string][]float64, error) {
	cols := make(map[string][]float64, len(criteria))
	for _, c := range criteria {
		raw, err := ds.Column(c)
		if err != nil {
			return NormalizedTable{}, nil, err
		}
		norm, err := n.Normalize(raw)
		if err != nil {
			var dce *DegenerateColumnError
			if errors.As(err, &dce) {
				dce.Criterion = c
			}
			return NormalizedTable{}, nil, err
		}
		cols[c] = norm
	}

	columns := append([]string(nil), ds.Criteria...)
	declared := make(map[string]bool, len(columns))
	for _, c := range columns {
		declared[c] = true
	}
	for _, c := range criteria {
		if !declared[c] {
			columns = append(columns, c)
		}
	}

	table := NormalizedTable{Columns: columns, Criteria: criteria, Rows: make([]NormalizedRow, len(ds.Records))}
	for i, r := range ds.Records {
		row := NormalizedRow{
			ID:     r.ID,
			Values: make(map[string]float64, len(r.Values)),
			Norm:   make(map[string]float64, len(criteria)),
		}
		for k, v := range r.Values {
			row.Values[k] = v
		}
		for _, c := range criteria {
			row.Norm[c] = cols[c][i]
		}
		table.Rows[i] = row
	}
	return table, cols, nil
}
