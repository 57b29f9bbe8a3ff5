package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/Destinasi/internal/scoring"
)

// ParseCSV reads a destination table. The header must contain idColumn;
// every other column is a criterion and every cell must be numeric.
func ParseCSV(r io.Reader, idColumn string) (scoring.Dataset, error) {
	if idColumn == "" {
		idColumn = scoring.IDColumn
	}
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return scoring.Dataset{}, errors.New("csv is empty")
		}
		return scoring.Dataset{}, fmt.Errorf("read csv header: %w", err)
	}

	idIdx := -1
	var criteria []string
	colNames := make([]string, len(headers))
	seenCol := make(map[string]bool, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if seenCol[h] {
			return scoring.Dataset{}, fmt.Errorf("duplicate column %q", h)
		}
		seenCol[h] = true
		colNames[i] = h
		if h == idColumn {
			idIdx = i
			continue
		}
		criteria = append(criteria, h)
	}
	if idIdx < 0 {
		return scoring.Dataset{}, fmt.Errorf("csv has no %q column", idColumn)
	}

	ds := scoring.Dataset{Criteria: criteria}
	seenID := make(map[string]bool)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return scoring.Dataset{}, fmt.Errorf("read csv line %d: %w", line, err)
		}

		rec := scoring.Record{Values: make(map[string]float64, len(criteria))}
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if i == idIdx {
				rec.ID = cell
				continue
			}
			if cell == "" {
				return scoring.Dataset{}, fmt.Errorf("line %d: %q is empty", line, colNames[i])
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return scoring.Dataset{}, fmt.Errorf("line %d: %q is not numeric: %q", line, colNames[i], cell)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return scoring.Dataset{}, fmt.Errorf("line %d: %q is not a finite number: %q", line, colNames[i], cell)
			}
			rec.Values[colNames[i]] = v
		}
		if rec.ID == "" {
			return scoring.Dataset{}, fmt.Errorf("line %d: empty %s", line, idColumn)
		}
		if seenID[rec.ID] {
			return scoring.Dataset{}, fmt.Errorf("line %d: duplicate %s %q", line, idColumn, rec.ID)
		}
		seenID[rec.ID] = true
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

// LoadFile parses the CSV file at path.
func LoadFile(path, idColumn string) (scoring.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return scoring.Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := ParseCSV(f, idColumn)
	if err != nil {
		return scoring.Dataset{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return ds, nil
}

// FromRecords builds a dataset from caller-supplied records, deriving the
// criteria from the first record in sorted order.
func FromRecords(records []scoring.Record) (scoring.Dataset, error) {
	if len(records) == 0 {
		return scoring.Dataset{}, errors.New("no records")
	}
	seen := make(map[string]bool, len(records))
	for i, r := range records {
		if r.ID == "" {
			return scoring.Dataset{}, fmt.Errorf("record %d: empty %s", i, scoring.IDColumn)
		}
		if seen[r.ID] {
			return scoring.Dataset{}, fmt.Errorf("duplicate %s %q", scoring.IDColumn, r.ID)
		}
		seen[r.ID] = true
	}
	return scoring.Dataset{
		Criteria: scoring.Weights(records[0].Values).Names(),
		Records:  records,
	}, nil
}
