package scoring

import "sort"

// TopMarker is shown next to the best-ranked destination.
const TopMarker = "🏆"

// RankedRow is one line of a ranking.
type RankedRow struct {
	Rank  int     `json:"rank"`
	ID    string  `json:"destinasi"`
	Score float64 `json:"skor_total"`
	Top   bool    `json:"top"`
}

// ResultTable is a ranking sorted by descending score.
type ResultTable struct {
	Method Method      `json:"method"`
	Rows   []RankedRow `json:"rows"`
}

// Header returns the serialized column names.
func (t ResultTable) Header() []string {
	return []string{IDColumn, ScoreColumn}
}

// Records returns the table as string cells matching Header.
func (t ResultTable) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = []string{r.ID, formatFloat(r.Score)}
	}
	return out
}

// Top returns the best-ranked row, or false for an empty table.
func (t ResultTable) Top() (RankedRow, bool) {
	if len(t.Rows) == 0 {
		return RankedRow{}, false
	}
	return t.Rows[0], true
}

// Rank sorts scored rows by descending total. Equal scores keep their input
// order.
func Rank(s *Scored) ResultTable {
	rows := make([]RankedRow, len(s.Normalized.Rows))
	for i, r := range s.Normalized.Rows {
		rows[i] = RankedRow{ID: r.ID, Score: s.Scores[i]}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	if len(rows) > 0 {
		rows[0].Top = true
	}
	return ResultTable{Method: s.Method, Rows: rows}
}
