package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MikeSquared-Agency/Destinasi/internal/scoring"
)

const (
	RankingSheet    = "Ranking"
	NormalizedSheet = "Normalisasi"

	// ContentType is the MIME type of the workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// WriteWorkbook writes the ranking and, when normalized is non-nil, a second
// sheet with the normalized table.
func WriteWorkbook(w io.Writer, table scoring.ResultTable, normalized *scoring.NormalizedTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RankingSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := []interface{}{"Rank", scoring.IDColumn, scoring.ScoreColumn, "Highlight"}
	if err := f.SetSheetRow(RankingSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range table.Rows {
		row := []interface{}{r.Rank, r.ID, r.Score}
		if r.Top {
			row = append(row, scoring.TopMarker)
		}
		if err := setRow(f, RankingSheet, i+2, row); err != nil {
			return err
		}
	}

	if normalized != nil {
		if _, err := f.NewSheet(NormalizedSheet); err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		h := normalized.Header()
		cells := make([]interface{}, len(h))
		for i, v := range h {
			cells[i] = v
		}
		if err := setRow(f, NormalizedSheet, 1, cells); err != nil {
			return err
		}
		for i, nr := range normalized.Rows {
			row := make([]interface{}, 0, len(h))
			row = append(row, nr.ID)
			for _, c := range normalized.RawColumns() {
				row = append(row, nr.Values[c])
			}
			for _, c := range normalized.Criteria {
				row = append(row, nr.Norm[c])
			}
			if err := setRow(f, NormalizedSheet, i+2, row); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, line int, row []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, line, err)
	}
	return nil
}
