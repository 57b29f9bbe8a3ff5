package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Destinasi/internal/scoring"
)

// MemoryStore keeps snapshots in process memory. Used when no database is
// configured.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]*Snapshot
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[uuid.UUID]*Snapshot),
		now:       time.Now,
	}
}

func (m *MemoryStore) SaveSnapshot(_ context.Context, s *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = m.now()
	cp := *s
	m.snapshots[s.ID] = &cp
	return nil
}

func (m *MemoryStore) GetSnapshot(_ context.Context, id uuid.UUID) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) ListSnapshots(_ context.Context, filter SnapshotFilter) ([]*Snapshot, error) {
	m.mu.RLock()
	var out []*Snapshot
	for _, s := range m.snapshots {
		if filter.Method != "" && s.Method != filter.Method {
			continue
		}
		if filter.Kind != "" && s.Kind != filter.Kind {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) GetStats(_ context.Context) (*SnapshotStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &SnapshotStats{
		ByMethod: make(map[scoring.Method]int),
		ByKind:   make(map[SnapshotKind]int),
	}
	for _, s := range m.snapshots {
		stats.Total++
		stats.ByMethod[s.Method]++
		stats.ByKind[s.Kind]++
	}
	return stats, nil
}

func (m *MemoryStore) Close() error { return nil }
