package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Destinasi/internal/dataset"
	"github.com/MikeSquared-Agency/Destinasi/internal/events"
	"github.com/MikeSquared-Agency/Destinasi/internal/metrics"
	"github.com/MikeSquared-Agency/Destinasi/internal/scoring"
	"github.com/MikeSquared-Agency/Destinasi/internal/store"
)

// ErrInvalidRequest marks caller mistakes that are not scoring errors.
var ErrInvalidRequest = errors.New("invalid request")

// DefaultSensitivityCriterion is perturbed when a request names none.
const DefaultSensitivityCriterion = "Biaya Harian"

// HistoryLogger persists a ranking as a file and returns its path.
type HistoryLogger interface {
	Log(table scoring.ResultTable) (string, error)
}

// RangeFilter keeps destinations whose criterion value lies in [Min, Max].
type RangeFilter struct {
	Criterion string  `json:"criterion"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

type RankRequest struct {
	Method     string             `json:"method,omitempty"`
	WeightMode string             `json:"weight_mode,omitempty"`
	Weights    map[string]float64 `json:"weights,omitempty"`
	Records    []scoring.Record   `json:"records,omitempty"`
	Filter     *RangeFilter       `json:"filter,omitempty"`
}

type SensitivityRequest struct {
	RankRequest
	Criterion string  `json:"criterion,omitempty"`
	Value     float64 `json:"value"`
}

type Options struct {
	Dataset        scoring.Dataset
	DefaultMethod  scoring.Method
	DefaultWeights scoring.Weights
	Tolerance      float64
	ParetoEnabled  bool
	Seed           int64
}

type Service struct {
	engine  *scoring.Engine
	store   store.Store
	events  events.Client
	history HistoryLogger
	opts    Options
	logger  *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
}

// New creates a Service. events and history may be nil.
func New(engine *scoring.Engine, s store.Store, ev events.Client, h HistoryLogger, opts Options, logger *slog.Logger) *Service {
	if ev == nil {
		ev = events.Nop{}
	}
	if opts.DefaultMethod == "" {
		opts.DefaultMethod = scoring.MethodAHP
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Service{
		engine:  engine,
		store:   s,
		events:  ev,
		history: h,
		opts:    opts,
		logger:  logger,
		rng:     rand.New(rand.NewSource(seed)),
		now:     time.Now,
	}
}

// Criteria describes the criteria of the default dataset.
func (s *Service) Criteria() []dataset.Criterion {
	known := make(map[string]string, len(dataset.DefaultCriteria))
	for _, c := range dataset.DefaultCriteria {
		known[c.Name] = c.Description
	}
	out := make([]dataset.Criterion, 0, len(s.opts.Dataset.Criteria))
	for _, name := range s.opts.Dataset.Criteria {
		out = append(out, dataset.Criterion{Name: name, Description: known[name]})
	}
	return out
}

// DefaultWeights returns a copy of the configured weights.
func (s *Service) DefaultWeights() scoring.Weights {
	return s.opts.DefaultWeights.Clone()
}

// Rank computes, persists and announces one ranking.
func (s *Service) Rank(ctx context.Context, req RankRequest) (*store.Snapshot, error) {
	start := time.Now()
	method, ds, w, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	eval, err := s.engine.Evaluate(ds, method, w)
	s.observe(method, store.KindRanking, start, err)
	if err != nil {
		return nil, err
	}

	snap := &store.Snapshot{
		ID:         uuid.New(),
		Kind:       store.KindRanking,
		Method:     method,
		Weights:    eval.Weights,
		Ranking:    eval.Ranking,
		Normalized: &eval.Normalized,
		RowCount:   ds.Len(),
	}
	if s.opts.ParetoEnabled {
		frontier, err := scoring.Frontier(ds, eval.Normalized.Criteria)
		if err != nil {
			return nil, err
		}
		snap.Frontier = frontier
	}
	snap.HistoryFile = s.logHistory(eval.Ranking)

	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	top, _ := eval.Ranking.Top()
	s.publish(events.SubjectRankingCompleted(snap.ID.String()), events.RankingCompletedEvent{
		SnapshotID: snap.ID.String(),
		Method:     string(method),
		Weights:    eval.Weights,
		Rows:       ds.Len(),
		Top:        top.ID,
		TopScore:   top.Score,
		Timestamp:  s.now().UTC(),
	})

	s.logger.Info("ranking completed",
		"snapshot_id", snap.ID,
		"method", method,
		"rows", ds.Len(),
		"top", top.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return snap, nil
}

// Simulate reruns the ranking with one criterion's weight replaced.
func (s *Service) Simulate(ctx context.Context, req SensitivityRequest) (*store.Snapshot, error) {
	start := time.Now()
	method, ds, w, err := s.prepare(req.RankRequest)
	if err != nil {
		return nil, err
	}
	criterion := req.Criterion
	if criterion == "" {
		criterion = DefaultSensitivityCriterion
	}

	res, err := s.engine.Simulate(ds, method, w, criterion, req.Value)
	s.observe(method, store.KindSensitivity, start, err)
	if err != nil {
		return nil, err
	}

	value := req.Value
	base := res.Base
	snap := &store.Snapshot{
		ID:        uuid.New(),
		Kind:      store.KindSensitivity,
		Method:    method,
		Weights:   res.Weights,
		Ranking:   res.Simulated,
		RowCount:  ds.Len(),
		Criterion: criterion,
		Value:     &value,
		Shifts:    res.Shifts,
		Base:      &base,
	}
	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	top, _ := res.Simulated.Top()
	s.publish(events.SubjectSensitivityCompleted(snap.ID.String()), events.SensitivityCompletedEvent{
		SnapshotID: snap.ID.String(),
		Method:     string(method),
		Criterion:  criterion,
		From:       w[criterion],
		To:         req.Value,
		Changed:    res.Changed(),
		Top:        top.ID,
		Timestamp:  s.now().UTC(),
	})

	s.logger.Info("sensitivity completed",
		"snapshot_id", snap.ID,
		"method", method,
		"criterion", criterion,
		"from", w[criterion],
		"to", req.Value,
		"changed", res.Changed(),
	)
	return snap, nil
}

// Get returns a stored snapshot, or nil when it does not exist.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*store.Snapshot, error) {
	return s.store.GetSnapshot(ctx, id)
}

// List returns stored snapshots, newest first.
func (s *Service) List(ctx context.Context, filter store.SnapshotFilter) ([]*store.Snapshot, error) {
	return s.store.ListSnapshots(ctx, filter)
}

// Stats summarizes stored snapshots.
func (s *Service) Stats(ctx context.Context) (*store.SnapshotStats, error) {
	return s.store.GetStats(ctx)
}

// prepare resolves the method, the dataset and the weight mapping of req.
func (s *Service) prepare(req RankRequest) (scoring.Method, scoring.Dataset, scoring.Weights, error) {
	method := s.opts.DefaultMethod
	if req.Method != "" {
		m, err := scoring.ParseMethod(req.Method)
		if err != nil {
			return "", scoring.Dataset{}, nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		method = m
	}

	ds := s.opts.Dataset
	if len(req.Records) > 0 {
		custom, err := dataset.FromRecords(req.Records)
		if err != nil {
			return "", scoring.Dataset{}, nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		ds = custom
	}
	if req.Filter != nil {
		filtered, err := ds.FilterRange(req.Filter.Criterion, req.Filter.Min, req.Filter.Max)
		if err != nil {
			var mce *scoring.MissingCriterionError
			if errors.As(err, &mce) {
				return "", scoring.Dataset{}, nil, err
			}
			return "", scoring.Dataset{}, nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		ds = filtered
	}
	if ds.Len() == 0 {
		return "", scoring.Dataset{}, nil, fmt.Errorf("%w: no destinations to rank", ErrInvalidRequest)
	}
	metrics.DatasetRows.Observe(float64(ds.Len()))

	mode, err := scoring.ParseWeightMode(req.WeightMode)
	if err != nil {
		return "", scoring.Dataset{}, nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	raw := req.Weights
	if len(raw) == 0 && mode != scoring.WeightModeRandom {
		raw = s.opts.DefaultWeights
	}

	s.rngMu.Lock()
	w, err := scoring.DeriveWeights(mode, ds.Criteria, raw, s.opts.Tolerance, s.rng)
	s.rngMu.Unlock()
	if err != nil {
		return "", scoring.Dataset{}, nil, err
	}
	return method, ds, w, nil
}

func (s *Service) observe(m scoring.Method, kind store.SnapshotKind, start time.Time, err error) {
	metrics.RankingsTotal.WithLabelValues(string(m), string(kind), metrics.Status(err)).Inc()
	metrics.RankingDuration.WithLabelValues(string(m), string(kind)).Observe(time.Since(start).Seconds())
}

func (s *Service) logHistory(table scoring.ResultTable) string {
	if s.history == nil {
		return ""
	}
	path, err := s.history.Log(table)
	metrics.HistoryWritesTotal.WithLabelValues(metrics.Status(err)).Inc()
	if err != nil {
		s.logger.Warn("failed to write history", "method", table.Method, "error", err)
		return ""
	}
	return path
}

func (s *Service) publish(subject string, event interface{}) {
	if err := s.events.Publish(subject, event); err != nil {
		s.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
