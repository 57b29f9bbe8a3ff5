package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Destinasi/internal/config"
)

func NewRouter(svc RankingService, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Server.RequestsPerMinute))

	catalog := NewCatalogHandler(svc)
	rankings := NewRankingsHandler(svc, cfg.Dataset.IDColumn)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/criteria", catalog.Criteria)
		r.Get("/methods", catalog.Methods)

		r.Post("/rankings", rankings.Create)
		r.Post("/rankings/csv", rankings.CreateFromCSV)
		r.Post("/rankings/sensitivity", rankings.Sensitivity)
		r.Get("/rankings/{id}", rankings.Get)
		r.Get("/rankings/{id}/export.xlsx", rankings.ExportXLSX)
		r.Get("/rankings/{id}/export.csv", rankings.ExportCSV)
		r.Get("/rankings/{id}/profile/{destinasi}", rankings.Profile)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Get("/rankings", rankings.List)
			r.Get("/stats", rankings.Stats)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
