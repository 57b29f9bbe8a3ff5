package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Destinasi/internal/dataset"
	"github.com/MikeSquared-Agency/Destinasi/internal/export"
	"github.com/MikeSquared-Agency/Destinasi/internal/history"
	"github.com/MikeSquared-Agency/Destinasi/internal/scoring"
	"github.com/MikeSquared-Agency/Destinasi/internal/service"
	"github.com/MikeSquared-Agency/Destinasi/internal/store"
)

const maxUploadBytes = 1 << 20

// RankingService is the part of service.Service the handlers need.
type RankingService interface {
	Criteria() []dataset.Criterion
	DefaultWeights() scoring.Weights
	Rank(ctx context.Context, req service.RankRequest) (*store.Snapshot, error)
	Simulate(ctx context.Context, req service.SensitivityRequest) (*store.Snapshot, error)
	Get(ctx context.Context, id uuid.UUID) (*store.Snapshot, error)
	List(ctx context.Context, filter store.SnapshotFilter) ([]*store.Snapshot, error)
	Stats(ctx context.Context) (*store.SnapshotStats, error)
}

type RankingsHandler struct {
	svc      RankingService
	idColumn string
}

func NewRankingsHandler(svc RankingService, idColumn string) *RankingsHandler {
	if idColumn == "" {
		idColumn = scoring.IDColumn
	}
	return &RankingsHandler{svc: svc, idColumn: idColumn}
}

func (h *RankingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	snap, err := h.svc.Rank(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// CreateFromCSV ranks a CSV dataset sent as the request body. Method, weight
// mode and a JSON weights object come from the query string.
func (h *RankingsHandler) CreateFromCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := service.RankRequest{
		Method:     q.Get("method"),
		WeightMode: q.Get("weight_mode"),
	}
	if raw := q.Get("weights"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Weights); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid weights parameter"})
			return
		}
	}

	ds, err := dataset.ParseCSV(http.MaxBytesReader(w, r.Body, maxUploadBytes), h.idColumn)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	req.Records = ds.Records

	snap, err := h.svc.Rank(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *RankingsHandler) Sensitivity(w http.ResponseWriter, r *http.Request) {
	var req service.SensitivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	snap, err := h.svc.Simulate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *RankingsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.SnapshotFilter{Kind: store.SnapshotKind(q.Get("kind"))}
	if m := q.Get("method"); m != "" {
		method, err := scoring.ParseMethod(m)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		filter.Method = method
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid offset"})
			return
		}
		filter.Offset = n
	}

	snaps, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if snaps == nil {
		snaps = []*store.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (h *RankingsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *RankingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ProfileResponse is one destination's normalized values, aligned with
// Criteria.
type ProfileResponse struct {
	ID       string    `json:"destinasi"`
	Criteria []string  `json:"criteria"`
	Values   []float64 `json:"values"`
}

func (h *RankingsHandler) Profile(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	dest := chi.URLParam(r, "destinasi")
	if snap.Normalized == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "ranking has no normalized table"})
		return
	}
	values, found := snap.Normalized.Profile(dest)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("destination %q not in ranking", dest)})
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{ID: dest, Criteria: snap.Normalized.Criteria, Values: values})
}

func (h *RankingsHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, snap.Ranking, snap.Normalized); err != nil {
		writeError(w, err)
		return
	}
	name := fmt.Sprintf("ranking_%s_%s.xlsx", snap.Method, snap.CreatedAt.Format(history.TimestampLayout))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *RankingsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := history.WriteCSV(&buf, snap.Ranking.Header(), snap.Ranking.Records()); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", history.FileName(snap.Method, snap.CreatedAt)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// load resolves the {id} URL parameter. It writes the error response itself
// and reports false when the handler should stop.
func (h *RankingsHandler) load(w http.ResponseWriter, r *http.Request) (*store.Snapshot, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid ranking id"})
		return nil, false
	}
	snap, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if snap == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "ranking not found"})
		return nil, false
	}
	return snap, true
}
