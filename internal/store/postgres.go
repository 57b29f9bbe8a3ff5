package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/Destinasi/internal/scoring"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS ranking_snapshots (
	snapshot_id     UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	kind            TEXT NOT NULL,
	method          TEXT NOT NULL,
	weights         JSONB NOT NULL,
	ranking         JSONB NOT NULL,
	normalized      JSONB,
	frontier        JSONB,
	row_count       INTEGER NOT NULL,
	criterion       TEXT,
	simulated_value DOUBLE PRECISION,
	shifts          JSONB,
	base_ranking    JSONB,
	history_file    TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ranking_snapshots_created_idx ON ranking_snapshots (created_at DESC);`

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const snapshotColumns = `snapshot_id, kind, method, weights, ranking, normalized, frontier,
	row_count, criterion, simulated_value, shifts, base_ranking, history_file, created_at`

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	weightsJSON, err := json.Marshal(snap.Weights)
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}
	rankingJSON, err := json.Marshal(snap.Ranking)
	if err != nil {
		return fmt.Errorf("marshal ranking: %w", err)
	}
	normalizedJSON := nullableJSON(snap.Normalized != nil, snap.Normalized)
	frontierJSON := nullableJSON(snap.Frontier != nil, snap.Frontier)
	shiftsJSON := nullableJSON(snap.Shifts != nil, snap.Shifts)
	baseJSON := nullableJSON(snap.Base != nil, snap.Base)

	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO ranking_snapshots (snapshot_id, kind, method, weights, ranking, normalized, frontier,
			row_count, criterion, simulated_value, shifts, base_ranking, history_file)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at`,
		snap.ID, string(snap.Kind), string(snap.Method), weightsJSON, rankingJSON, normalizedJSON, frontierJSON,
		snap.RowCount, nullString(snap.Criterion), snap.Value, shiftsJSON, baseJSON, nullString(snap.HistoryFile),
	).Scan(&snap.CreatedAt)
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+snapshotColumns+` FROM ranking_snapshots WHERE snapshot_id = $1`, id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]*Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM ranking_snapshots WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Method != "" {
		n++
		query += fmt.Sprintf(" AND method = $%d", n)
		args = append(args, string(filter.Method))
	}
	if filter.Kind != "" {
		n++
		query += fmt.Sprintf(" AND kind = $%d", n)
		args = append(args, string(filter.Kind))
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetStats(ctx context.Context) (*SnapshotStats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT method, kind, COUNT(*)
		FROM ranking_snapshots
		GROUP BY method, kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &SnapshotStats{
		ByMethod: make(map[scoring.Method]int),
		ByKind:   make(map[SnapshotKind]int),
	}
	for rows.Next() {
		var method, kind string
		var count int
		if err := rows.Scan(&method, &kind, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		stats.ByMethod[scoring.Method(method)] += count
		stats.ByKind[SnapshotKind(kind)] += count
	}
	return stats, rows.Err()
}

func scanSnapshot(row pgx.Row) (*Snapshot, error) {
	snap := &Snapshot{}
	var kind, method string
	var weightsJSON, rankingJSON, normalizedJSON, frontierJSON, shiftsJSON, baseJSON []byte
	var criterion, historyFile sql.NullString
	if err := row.Scan(
		&snap.ID, &kind, &method, &weightsJSON, &rankingJSON, &normalizedJSON, &frontierJSON,
		&snap.RowCount, &criterion, &snap.Value, &shiftsJSON, &baseJSON, &historyFile, &snap.CreatedAt,
	); err != nil {
		return nil, err
	}
	snap.Kind = SnapshotKind(kind)
	snap.Method = scoring.Method(method)
	snap.Criterion = criterion.String
	snap.HistoryFile = historyFile.String

	if err := json.Unmarshal(weightsJSON, &snap.Weights); err != nil {
		return nil, fmt.Errorf("decode weights: %w", err)
	}
	if err := json.Unmarshal(rankingJSON, &snap.Ranking); err != nil {
		return nil, fmt.Errorf("decode ranking: %w", err)
	}
	if normalizedJSON != nil {
		snap.Normalized = &scoring.NormalizedTable{}
		_ = json.Unmarshal(normalizedJSON, snap.Normalized)
	}
	if frontierJSON != nil {
		_ = json.Unmarshal(frontierJSON, &snap.Frontier)
	}
	if shiftsJSON != nil {
		_ = json.Unmarshal(shiftsJSON, &snap.Shifts)
	}
	if baseJSON != nil {
		snap.Base = &scoring.ResultTable{}
		_ = json.Unmarshal(baseJSON, snap.Base)
	}
	return snap, nil
}

func nullableJSON(present bool, v interface{}) []byte {
	if !present {
		return nil
	}
	b, _ := json.Marshal(v)
	return b
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
