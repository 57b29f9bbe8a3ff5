package scoring

import (
	"fmt"
	"strconv"
)

// IDColumn is the header of the destination identifier column.
const IDColumn = "Destinasi"

// ScoreColumn is the header of the aggregate score column.
const ScoreColumn = "Skor Total"

// NormSuffix is appended to a criterion name to form its normalized column.
const NormSuffix = "_norm"

// Record is one candidate destination with its raw criterion values.
type Record struct {
	ID     string             `json:"destinasi"`
	Values map[string]float64 `json:"values"`
}

// Dataset is an ordered set of candidates. Criteria lists the numeric
// columns in load order.
type Dataset struct {
	Criteria []string `json:"criteria"`
	Records  []Record `json:"records"`
}

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.Records) }

// Column returns the values of one criterion in record order.
func (d Dataset) Column(name string) ([]float64, error) {
	col := make([]float64, len(d.Records))
	for i, r := range d.Records {
		v, ok := r.Values[name]
		if !ok {
			return nil, &MissingCriterionError{Criterion: name, Record: r.ID}
		}
		col[i] = v
	}
	return col, nil
}

// FilterRange returns the records whose value for criterion lies in [min, max].
// The receiver is not modified.
func (d Dataset) FilterRange(criterion string, min, max float64) (Dataset, error) {
	if min > max {
		return Dataset{}, fmt.Errorf("filter %q: min %g exceeds max %g", criterion, min, max)
	}
	out := Dataset{Criteria: append([]string(nil), d.Criteria...)}
	for _, r := range d.Records {
		v, ok := r.Values[criterion]
		if !ok {
			return Dataset{}, &MissingCriterionError{Criterion: criterion, Record: r.ID}
		}
		if v >= min && v <= max {
			out.Records = append(out.Records, r)
		}
	}
	return out, nil
}

// NormalizedRow is a record extended with its normalized criterion values.
type NormalizedRow struct {
	ID     string             `json:"destinasi"`
	Values map[string]float64 `json:"values"`
	Norm   map[string]float64 `json:"norm"`
}

// NormalizedTable is the dataset view produced by one scoring call.
// Columns lists every raw column of the dataset, Criteria only the weighted
// ones. Rows keep the input order.
type NormalizedTable struct {
	Columns  []string        `json:"columns,omitempty"`
	Criteria []string        `json:"criteria"`
	Rows     []NormalizedRow `json:"rows"`
}

// RawColumns returns Columns, or Criteria for tables stored without it.
func (t NormalizedTable) RawColumns() []string {
	if len(t.Columns) > 0 {
		return t.Columns
	}
	return t.Criteria
}

// Header returns the column names: identifier, every raw column, then one
// "<criterion>_norm" column per weighted criterion.
func (t NormalizedTable) Header() []string {
	raw := t.RawColumns()
	h := make([]string, 0, 1+len(raw)+len(t.Criteria))
	h = append(h, IDColumn)
	h = append(h, raw...)
	for _, c := range t.Criteria {
		h = append(h, c+NormSuffix)
	}
	return h
}

// Records returns the table as string cells matching Header.
func (t NormalizedTable) Records() [][]string {
	raw := t.RawColumns()
	out := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := make([]string, 0, 1+len(raw)+len(t.Criteria))
		row = append(row, r.ID)
		for _, c := range raw {
			row = append(row, formatFloat(r.Values[c]))
		}
		for _, c := range t.Criteria {
			row = append(row, formatFloat(r.Norm[c]))
		}
		out = append(out, row)
	}
	return out
}

// Profile returns the normalized values of one destination in criteria
// order, or false when id is unknown.
func (t NormalizedTable) Profile(id string) ([]float64, bool) {
	for _, r := range t.Rows {
		if r.ID == id {
			p := make([]float64, len(t.Criteria))
			for i, c := range t.Criteria {
				p[i] = r.Norm[c]
			}
			return p, true
		}
	}
	return nil, false
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
