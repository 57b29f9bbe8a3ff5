package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Destinasi/internal/scoring"
)

type SnapshotKind string

const (
	KindRanking     SnapshotKind = "ranking"
	KindSensitivity SnapshotKind = "sensitivity"
)

// Snapshot is a persisted ranking result.
type Snapshot struct {
	ID     uuid.UUID      `json:"id"`
	Kind   SnapshotKind   `json:"kind"`
	Method scoring.Method `json:"method"`

	Weights    scoring.Weights          `json:"weights"`
	Ranking    scoring.ResultTable      `json:"ranking"`
	Normalized *scoring.NormalizedTable `json:"normalized,omitempty"`
	Frontier   []string                 `json:"frontier,omitempty"`
	RowCount   int                      `json:"row_count"`

	// Sensitivity runs only
	Criterion string               `json:"criterion,omitempty"`
	Value     *float64             `json:"value,omitempty"`
	Shifts    []scoring.RankShift  `json:"shifts,omitempty"`
	Base      *scoring.ResultTable `json:"base,omitempty"`

	HistoryFile string    `json:"history_file,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type SnapshotFilter struct {
	Method scoring.Method
	Kind   SnapshotKind
	Limit  int
	Offset int
}

type SnapshotStats struct {
	Total    int                    `json:"total"`
	ByMethod map[scoring.Method]int `json:"by_method"`
	ByKind   map[SnapshotKind]int   `json:"by_kind"`
}

const defaultListLimit = 100

type Store interface {
	SaveSnapshot(ctx context.Context, s *Snapshot) error
	GetSnapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]*Snapshot, error)
	GetStats(ctx context.Context) (*SnapshotStats, error)
	Close() error
}
