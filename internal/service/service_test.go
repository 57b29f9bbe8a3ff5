package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Destinasi/internal/events"
	"github.com/MikeSquared-Agency/Destinasi/internal/scoring"
	"github.com/MikeSquared-Agency/Destinasi/internal/store"
)

type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) Publish(subject string, data interface{}) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *MockEvents) Subscribe(subject string, handler func(string, []byte)) error {
	args := m.Called(subject, handler)
	return args.Error(0)
}

func (m *MockEvents) Close() {}

type stubHistory struct {
	tables []scoring.ResultTable
	err    error
}

func (h *stubHistory) Log(table scoring.ResultTable) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	h.tables = append(h.tables, table)
	return "data/history_" + string(table.Method) + ".csv", nil
}

func testDataset() scoring.Dataset {
	return scoring.Dataset{
		Criteria: []string{"Biaya Harian", "Tingkat Keamanan"},
		Records: []scoring.Record{
			{ID: "Bangkok", Values: map[string]float64{"Biaya Harian": 0.2, "Tingkat Keamanan": 0.6}},
			{ID: "Tokyo", Values: map[string]float64{"Biaya Harian": 0.9, "Tingkat Keamanan": 0.9}},
			{ID: "Hanoi", Values: map[string]float64{"Biaya Harian": 0.1, "Tingkat Keamanan": 0.5}},
		},
	}
}

func testOptions() Options {
	return Options{
		Dataset:        testDataset(),
		DefaultMethod:  scoring.MethodAHP,
		DefaultWeights: scoring.Weights{"Biaya Harian": 0.5, "Tingkat Keamanan": 0.5},
		Tolerance:      scoring.DefaultWeightTolerance,
		ParetoEnabled:  true,
		Seed:           42,
	}
}

func newServiceWithOptions(t *testing.T, ev events.Client, h HistoryLogger, opts Options) (*Service, *store.MemoryStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := scoring.NewEngine(scoring.NewRegistry(scoring.Options{}), logger)
	st := store.NewMemoryStore()
	return New(engine, st, ev, h, opts, logger), st
}

func newTestService(t *testing.T, ev events.Client, h HistoryLogger) (*Service, *store.MemoryStore) {
	return newServiceWithOptions(t, ev, h, testOptions())
}

func TestRankPersistsAndPublishes(t *testing.T) {
	ev := &MockEvents{}
	ev.On("Publish", mock.AnythingOfType("string"), mock.AnythingOfType("events.RankingCompletedEvent")).Return(nil)
	h := &stubHistory{}
	svc, st := newTestService(t, ev, h)

	snap, err := svc.Rank(context.Background(), RankRequest{Method: "saw"})
	require.NoError(t, err)

	assert.Equal(t, store.KindRanking, snap.Kind)
	assert.Equal(t, scoring.MethodSAW, snap.Method)
	assert.Equal(t, 3, snap.RowCount)
	require.Len(t, snap.Ranking.Rows, 3)
	assert.Equal(t, "Tokyo", snap.Ranking.Rows[0].ID)
	assert.True(t, snap.Ranking.Rows[0].Top)
	require.NotNil(t, snap.Normalized)
	assert.Equal(t, []string{"Biaya Harian", "Tingkat Keamanan"}, snap.Normalized.Criteria)
	assert.Equal(t, []string{"Tokyo"}, snap.Frontier)
	assert.Equal(t, "data/history_SAW.csv", snap.HistoryFile)
	assert.Len(t, h.tables, 1)

	stored, err := st.GetSnapshot(context.Background(), snap.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, snap.Ranking, stored.Ranking)

	ev.AssertNumberOfCalls(t, "Publish", 1)
	ev.AssertCalled(t, "Publish", events.SubjectRankingCompleted(snap.ID.String()), mock.Anything)
}

func TestRankUsesDefaults(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	snap, err := svc.Rank(context.Background(), RankRequest{})
	require.NoError(t, err)
	assert.Equal(t, scoring.MethodAHP, snap.Method)
	assert.Equal(t, scoring.Weights{"Biaya Harian": 0.5, "Tingkat Keamanan": 0.5}, snap.Weights)
	assert.Empty(t, snap.HistoryFile)
}

func TestRankWeightModes(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	snap, err := svc.Rank(ctx, RankRequest{
		WeightMode: "normalize",
		Weights:    map[string]float64{"Biaya Harian": 3, "Tingkat Keamanan": 1},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, snap.Weights["Biaya Harian"], 1e-9)
	assert.InDelta(t, 0.25, snap.Weights["Tingkat Keamanan"], 1e-9)

	snap, err = svc.Rank(ctx, RankRequest{WeightMode: "random"})
	require.NoError(t, err)
	assert.Len(t, snap.Weights, 2)
	assert.InDelta(t, 1.0, snap.Weights.Sum(), 1e-9)

	_, err = svc.Rank(ctx, RankRequest{
		Weights: map[string]float64{"Biaya Harian": 0.3, "Tingkat Keamanan": 0.3},
	})
	var iwe *scoring.InvalidWeightError
	assert.ErrorAs(t, err, &iwe)
}

func TestRankCustomRecordsAndFilter(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	snap, err := svc.Rank(ctx, RankRequest{
		Filter: &RangeFilter{Criterion: "Biaya Harian", Min: 0, Max: 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, snap.RowCount)
	for _, row := range snap.Ranking.Rows {
		assert.NotEqual(t, "Tokyo", row.ID)
	}

	snap, err = svc.Rank(ctx, RankRequest{
		Method:  "topsis",
		Weights: map[string]float64{"X": 1},
		Records: []scoring.Record{
			{ID: "A", Values: map[string]float64{"X": 1}},
			{ID: "B", Values: map[string]float64{"X": 0}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "A", snap.Ranking.Rows[0].ID)
}

func TestRankErrors(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	_, err := svc.Rank(ctx, RankRequest{Method: "electre"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Rank(ctx, RankRequest{WeightMode: "fuzzy"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Rank(ctx, RankRequest{Filter: &RangeFilter{Criterion: "Biaya Harian", Min: 5, Max: 6}})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Rank(ctx, RankRequest{Filter: &RangeFilter{Criterion: "Iklim", Max: 1}})
	var mce *scoring.MissingCriterionError
	assert.ErrorAs(t, err, &mce)

	_, err = svc.Rank(ctx, RankRequest{
		Weights: map[string]float64{"Biaya Harian": 0.5, "Iklim": 0.5},
	})
	assert.ErrorAs(t, err, &mce)
	assert.Equal(t, "Iklim", mce.Criterion)
}

func TestRankHistoryFailureIsNotFatal(t *testing.T) {
	svc, _ := newTestService(t, nil, &stubHistory{err: errors.New("disk full")})

	snap, err := svc.Rank(context.Background(), RankRequest{})
	require.NoError(t, err)
	assert.Empty(t, snap.HistoryFile)
}

func TestRankPublishFailureIsNotFatal(t *testing.T) {
	ev := &MockEvents{}
	ev.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down"))
	svc, _ := newTestService(t, ev, nil)

	_, err := svc.Rank(context.Background(), RankRequest{})
	require.NoError(t, err)
	ev.AssertExpectations(t)
}

func TestSimulate(t *testing.T) {
	ev := &MockEvents{}
	ev.On("Publish", mock.Anything, mock.AnythingOfType("events.SensitivityCompletedEvent")).Return(nil)
	svc, st := newTestService(t, ev, nil)

	snap, err := svc.Simulate(context.Background(), SensitivityRequest{
		RankRequest: RankRequest{Method: "AHP"},
		Value:       0.9,
	})
	require.NoError(t, err)

	assert.Equal(t, store.KindSensitivity, snap.Kind)
	assert.Equal(t, DefaultSensitivityCriterion, snap.Criterion)
	require.NotNil(t, snap.Value)
	assert.Equal(t, 0.9, *snap.Value)
	assert.InDelta(t, 0.9, snap.Weights["Biaya Harian"], 1e-9)
	assert.InDelta(t, 0.1, snap.Weights["Tingkat Keamanan"], 1e-9)
	require.NotNil(t, snap.Base)
	assert.Len(t, snap.Shifts, 3)
	assert.Equal(t, "Tokyo", snap.Ranking.Rows[0].ID)

	stats, err := st.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ByKind[store.KindSensitivity])
	ev.AssertExpectations(t)
}

func TestSimulateErrors(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	_, err := svc.Simulate(ctx, SensitivityRequest{Criterion: "Iklim", Value: 0.5})
	var mce *scoring.MissingCriterionError
	assert.ErrorAs(t, err, &mce)

	_, err = svc.Simulate(ctx, SensitivityRequest{Criterion: "Tingkat Keamanan", Value: 1.5})
	var iwe *scoring.InvalidWeightError
	assert.ErrorAs(t, err, &iwe)

	opts := testOptions()
	opts.DefaultWeights = scoring.Weights{"Biaya Harian": 1}
	opts.Dataset = scoring.Dataset{
		Criteria: []string{"Biaya Harian"},
		Records: []scoring.Record{
			{ID: "A", Values: map[string]float64{"Biaya Harian": 1}},
			{ID: "B", Values: map[string]float64{"Biaya Harian": 0}},
		},
	}
	single, _ := newServiceWithOptions(t, nil, nil, opts)
	_, err = single.Simulate(ctx, SensitivityRequest{Criterion: "Biaya Harian", Value: 0.5})
	var dwe *scoring.DegenerateWeightError
	assert.ErrorAs(t, err, &dwe)
}

func TestGetListStats(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	first, err := svc.Rank(ctx, RankRequest{Method: "AHP"})
	require.NoError(t, err)
	_, err = svc.Rank(ctx, RankRequest{Method: "TOPSIS"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	missing, err := svc.Get(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := svc.List(ctx, store.SnapshotFilter{Method: scoring.MethodTOPSIS})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
}

func TestCriteriaDescriptions(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	cs := svc.Criteria()
	require.Len(t, cs, 2)
	assert.Equal(t, "Biaya Harian", cs[0].Name)
	assert.NotEmpty(t, cs[0].Description)

	w := svc.DefaultWeights()
	w["Biaya Harian"] = 0
	assert.Equal(t, 0.5, svc.DefaultWeights()["Biaya Harian"])
}
