package events

import "time"

type RankingCompletedEvent struct {
	SnapshotID string             `json:"snapshot_id"`
	Method     string             `json:"method"`
	Weights    map[string]float64 `json:"weights"`
	Rows       int                `json:"rows"`
	Top        string             `json:"top"`
	TopScore   float64            `json:"top_score"`
	Timestamp  time.Time          `json:"timestamp"`
}

type SensitivityCompletedEvent struct {
	SnapshotID string    `json:"snapshot_id"`
	Method     string    `json:"method"`
	Criterion  string    `json:"criterion"`
	From       float64   `json:"from"`
	To         float64   `json:"to"`
	Changed    bool      `json:"changed"`
	Top        string    `json:"top"`
	Timestamp  time.Time `json:"timestamp"`
}
