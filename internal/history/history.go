package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/MikeSquared-Agency/Destinasi/internal/scoring"
)

// TimestampLayout formats the time component of a history file name.
const TimestampLayout = "20060102_150405"

// FileName returns history_<method>_<YYYYMMDD_HHMMSS>.csv.
func FileName(method scoring.Method, at time.Time) string {
	return fmt.Sprintf("history_%s_%s.csv", method, at.Format(TimestampLayout))
}

// CSVLogger writes one CSV file per ranking into Dir.
type CSVLogger struct {
	Dir string
	Now func() time.Time
}

// NewCSVLogger creates the directory if needed.
func NewCSVLogger(dir string) (*CSVLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &CSVLogger{Dir: dir, Now: time.Now}, nil
}

// Log writes table and returns the path of the new file.
func (l *CSVLogger) Log(table scoring.ResultTable) (string, error) {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	path := filepath.Join(l.Dir, FileName(table.Method, now()))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create history file: %w", err)
	}
	if err := WriteCSV(f, table.Header(), table.Records()); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close history file: %w", err)
	}
	return path, nil
}

// WriteCSV writes header followed by rows.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
