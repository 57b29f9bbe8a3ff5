package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Destinasi/internal/scoring"
)

type CriterionInfo struct {
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	DefaultWeight float64 `json:"default_weight"`
}

type MethodsResponse struct {
	Methods     []scoring.Method     `json:"methods"`
	WeightModes []scoring.WeightMode `json:"weight_modes"`
}

type CatalogHandler struct {
	svc RankingService
}

func NewCatalogHandler(svc RankingService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) Criteria(w http.ResponseWriter, r *http.Request) {
	weights := h.svc.DefaultWeights()
	criteria := h.svc.Criteria()
	out := make([]CriterionInfo, 0, len(criteria))
	for _, c := range criteria {
		out = append(out, CriterionInfo{
			Name:          c.Name,
			Description:   c.Description,
			DefaultWeight: weights[c.Name],
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) Methods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MethodsResponse{
		Methods: scoring.Methods(),
		WeightModes: []scoring.WeightMode{
			scoring.WeightModeManual,
			scoring.WeightModeNormalize,
			scoring.WeightModeRandom,
		},
	})
}
