package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MikeSquared-Agency/Destinasi/internal/config"
	"github.com/MikeSquared-Agency/Destinasi/internal/export"
	"github.com/MikeSquared-Agency/Destinasi/internal/scoring"
	"github.com/MikeSquared-Agency/Destinasi/internal/service"
	"github.com/MikeSquared-Agency/Destinasi/internal/store"
)

func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := scoring.NewEngine(scoring.NewRegistry(scoring.Options{}), logger)
	svc := service.New(engine, store.NewMemoryStore(), nil, nil, service.Options{
		Dataset: scoring.Dataset{
			Criteria: []string{"Biaya Harian", "Tingkat Keamanan"},
			Records: []scoring.Record{
				{ID: "Bangkok", Values: map[string]float64{"Biaya Harian": 0.2, "Tingkat Keamanan": 0.6}},
				{ID: "Tokyo", Values: map[string]float64{"Biaya Harian": 0.9, "Tingkat Keamanan": 0.9}},
				{ID: "Hanoi", Values: map[string]float64{"Biaya Harian": 0.1, "Tingkat Keamanan": 0.5}},
			},
		},
		DefaultMethod:  scoring.MethodAHP,
		DefaultWeights: scoring.Weights{"Biaya Harian": 0.5, "Tingkat Keamanan": 0.5},
		Tolerance:      scoring.DefaultWeightTolerance,
		ParetoEnabled:  true,
		Seed:           7,
	}, logger)

	cfg := &config.Config{
		Server:  config.ServerConfig{AdminToken: "test-token", RequestsPerMinute: 1000},
		Dataset: config.DatasetConfig{IDColumn: scoring.IDColumn},
	}
	return NewRouter(svc, cfg, logger)
}

func do(t *testing.T, router http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createRanking(t *testing.T, router http.Handler, body string) store.Snapshot {
	t.Helper()
	w := do(t, router, "POST", "/api/v1/rankings", body, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var snap store.Snapshot
	require.NoError(t, json.NewDecoder(w.Body).Decode(&snap))
	return snap
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestCriteriaEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := do(t, router, "GET", "/api/v1/criteria", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out []CriterionInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	require.Len(t, out, 2)
	assert.Equal(t, "Biaya Harian", out[0].Name)
	assert.NotEmpty(t, out[0].Description)
	assert.Equal(t, 0.5, out[0].DefaultWeight)
}

func TestMethodsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := do(t, router, "GET", "/api/v1/methods", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out MethodsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, []scoring.Method{scoring.MethodAHP, scoring.MethodSAW, scoring.MethodTOPSIS}, out.Methods)
	assert.Len(t, out.WeightModes, 3)
}

func TestCreateRanking(t *testing.T) {
	router := setupTestRouter(t)

	snap := createRanking(t, router, `{"method":"TOPSIS"}`)
	assert.NotEqual(t, uuid.Nil, snap.ID)
	assert.Equal(t, scoring.MethodTOPSIS, snap.Method)
	require.Len(t, snap.Ranking.Rows, 3)
	assert.Equal(t, "Tokyo", snap.Ranking.Rows[0].ID)
	assert.True(t, snap.Ranking.Rows[0].Top)
	assert.Equal(t, 1, snap.Ranking.Rows[0].Rank)
	require.NotNil(t, snap.Normalized)
	assert.Len(t, snap.Normalized.Rows, 3)
}

func TestCreateRankingErrors(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"malformed body", `{"method":`, http.StatusBadRequest, ""},
		{"unknown method", `{"method":"electre"}`, http.StatusBadRequest, ""},
		{"weights do not sum", `{"weights":{"Biaya Harian":0.3,"Tingkat Keamanan":0.3}}`, http.StatusUnprocessableEntity, KindInvalidWeight},
		{"negative weight", `{"weights":{"Biaya Harian":1.5,"Tingkat Keamanan":-0.5}}`, http.StatusUnprocessableEntity, KindInvalidWeight},
		{"unknown criterion", `{"weights":{"Biaya Harian":0.5,"Iklim":0.5}}`, http.StatusUnprocessableEntity, KindMissingCriterion},
		{"constant column", `{"weights":{"X":1},"records":[{"destinasi":"A","values":{"X":2}},{"destinasi":"B","values":{"X":2}}]}`, http.StatusUnprocessableEntity, KindDegenerateColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, "POST", "/api/v1/rankings", tt.body, nil)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			resp := decodeError(t, w)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.kind, resp.Kind)
		})
	}
}

func TestCreateRankingFromCSV(t *testing.T) {
	router := setupTestRouter(t)

	body := "Destinasi,X,Y\nA,1,0\nB,0,1\n"
	q := url.Values{}
	q.Set("method", "saw")
	q.Set("weights", `{"X":0.7,"Y":0.3}`)
	req := httptest.NewRequest("POST", "/api/v1/rankings/csv?"+q.Encode(), strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var snap store.Snapshot
	require.NoError(t, json.NewDecoder(w.Body).Decode(&snap))
	assert.Equal(t, scoring.MethodSAW, snap.Method)
	assert.Equal(t, "A", snap.Ranking.Rows[0].ID)
	assert.InDelta(t, 0.7, snap.Ranking.Rows[0].Score, 1e-9)

	req = httptest.NewRequest("POST", "/api/v1/rankings/csv", strings.NewReader("Kota,X\nA,1\n"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest("POST", "/api/v1/rankings/csv?weights=%7B", strings.NewReader(body))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRankingFromCSVNonFinite(t *testing.T) {
	router := setupTestRouter(t)

	for _, cell := range []string{"NaN", "Inf", "-Inf"} {
		t.Run(cell, func(t *testing.T) {
			body := "Destinasi,X,Y\nA,1,0\nB," + cell + ",1\n"
			req := httptest.NewRequest("POST", "/api/v1/rankings/csv", strings.NewReader(body))
			req.Header.Set("Content-Type", "text/csv")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, decodeError(t, w).Error, "not a finite number")
		})
	}
}

func TestWriteErrorInvalidValue(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, fmt.Errorf("rank: %w", &scoring.InvalidValueError{Criterion: "X", Record: "B"}))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, KindInvalidValue, resp.Kind)
	assert.Contains(t, resp.Error, `"X"`)
}

func TestSensitivityEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := do(t, router, "POST", "/api/v1/rankings/sensitivity", `{"method":"SAW","criterion":"Tingkat Keamanan","value":0.8}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var snap store.Snapshot
	require.NoError(t, json.NewDecoder(w.Body).Decode(&snap))
	assert.Equal(t, store.KindSensitivity, snap.Kind)
	assert.Equal(t, "Tingkat Keamanan", snap.Criterion)
	assert.InDelta(t, 0.8, snap.Weights["Tingkat Keamanan"], 1e-9)
	assert.InDelta(t, 0.2, snap.Weights["Biaya Harian"], 1e-9)
	require.NotNil(t, snap.Base)
	assert.Len(t, snap.Shifts, 3)
}

func TestSensitivityErrors(t *testing.T) {
	router := setupTestRouter(t)

	w := do(t, router, "POST", "/api/v1/rankings/sensitivity", `{"criterion":"Biaya Harian","value":2}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, KindInvalidWeight, decodeError(t, w).Kind)

	w = do(t, router, "POST", "/api/v1/rankings/sensitivity", `{"criterion":"Iklim","value":0.5}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, KindMissingCriterion, decodeError(t, w).Kind)

	body := `{"weights":{"X":1},"records":[{"destinasi":"A","values":{"X":1}},{"destinasi":"B","values":{"X":0}}],"criterion":"X","value":0.5}`
	w = do(t, router, "POST", "/api/v1/rankings/sensitivity", body, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, KindDegenerateWeight, decodeError(t, w).Kind)

	w = do(t, router, "POST", "/api/v1/rankings/sensitivity", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRanking(t *testing.T) {
	router := setupTestRouter(t)
	snap := createRanking(t, router, `{}`)

	w := do(t, router, "GET", "/api/v1/rankings/"+snap.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got store.Snapshot
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, snap.Ranking, got.Ranking)

	w = do(t, router, "GET", "/api/v1/rankings/"+uuid.New().String(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, "GET", "/api/v1/rankings/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileEndpoint(t *testing.T) {
	router := setupTestRouter(t)
	snap := createRanking(t, router, `{"method":"SAW"}`)

	w := do(t, router, "GET", "/api/v1/rankings/"+snap.ID.String()+"/profile/Tokyo", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var p ProfileResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.Equal(t, "Tokyo", p.ID)
	assert.Equal(t, []string{"Biaya Harian", "Tingkat Keamanan"}, p.Criteria)
	assert.InDeltaSlice(t, []float64{1, 1}, p.Values, 1e-9)

	w = do(t, router, "GET", "/api/v1/rankings/"+snap.ID.String()+"/profile/Paris", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, "GET", "/api/v1/rankings/"+uuid.New().String()+"/profile/Tokyo", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportCSV(t *testing.T) {
	router := setupTestRouter(t)
	snap := createRanking(t, router, `{"method":"AHP"}`)

	w := do(t, router, "GET", "/api/v1/rankings/"+snap.ID.String()+"/export.csv", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "history_AHP_")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Destinasi,Skor Total", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Tokyo,"))
}

func TestExportXLSX(t *testing.T) {
	router := setupTestRouter(t)
	snap := createRanking(t, router, `{"method":"SAW"}`)

	w := do(t, router, "GET", "/api/v1/rankings/"+snap.ID.String()+"/export.xlsx", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.RankingSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Tokyo", rows[1][1])
	assert.Equal(t, scoring.TopMarker, rows[1][3])

	norm, err := f.GetRows(export.NormalizedSheet)
	require.NoError(t, err)
	assert.Len(t, norm, 4)
}

func TestListRequiresAdminToken(t *testing.T) {
	router := setupTestRouter(t)
	createRanking(t, router, `{"method":"AHP"}`)
	createRanking(t, router, `{"method":"TOPSIS"}`)

	w := do(t, router, "GET", "/api/v1/rankings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	auth := map[string]string{"Authorization": "Bearer test-token"}
	w = do(t, router, "GET", "/api/v1/rankings?method=topsis", "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	var list []store.Snapshot
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, scoring.MethodTOPSIS, list[0].Method)

	w = do(t, router, "GET", "/api/v1/rankings?limit=abc", "", auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, "GET", "/api/v1/rankings?kind=sensitivity", "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestStatsWithToken(t *testing.T) {
	router := setupTestRouter(t)
	createRanking(t, router, `{}`)

	w := do(t, router, "GET", "/api/v1/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, "GET", "/api/v1/stats", "", map[string]string{"Authorization": "Bearer test-token"})
	require.Equal(t, http.StatusOK, w.Code)
	var stats store.SnapshotStats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Total)
}

func TestHealthEndpoint(t *testing.T) {
	router := NewMetricsRouter()
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
