package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/Destinasi/internal/scoring"
	"github.com/MikeSquared-Agency/Destinasi/internal/service"
)

// Error kinds reported in the "kind" field of 422 responses.
const (
	KindMissingCriterion = "missing_criterion"
	KindDegenerateColumn = "degenerate_column"
	KindInvalidWeight    = "invalid_weight"
	KindDegenerateWeight = "degenerate_weight"
	KindInvalidValue     = "invalid_value"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// errorKind classifies scoring errors. The empty string means err is not one.
func errorKind(err error) string {
	var (
		mce *scoring.MissingCriterionError
		dce *scoring.DegenerateColumnError
		iwe *scoring.InvalidWeightError
		dwe *scoring.DegenerateWeightError
		ive *scoring.InvalidValueError
	)
	switch {
	case errors.As(err, &mce):
		return KindMissingCriterion
	case errors.As(err, &dce):
		return KindDegenerateColumn
	case errors.As(err, &iwe):
		return KindInvalidWeight
	case errors.As(err, &dwe):
		return KindDegenerateWeight
	case errors.As(err, &ive):
		return KindInvalidValue
	}
	return ""
}

func writeError(w http.ResponseWriter, err error) {
	if kind := errorKind(err); kind != "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: kind})
		return
	}
	if errors.Is(err, service.ErrInvalidRequest) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
