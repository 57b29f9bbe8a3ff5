package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/Destinasi/internal/api"
	"github.com/MikeSquared-Agency/Destinasi/internal/config"
	"github.com/MikeSquared-Agency/Destinasi/internal/dataset"
	"github.com/MikeSquared-Agency/Destinasi/internal/events"
	"github.com/MikeSquared-Agency/Destinasi/internal/history"
	"github.com/MikeSquared-Agency/Destinasi/internal/logger"
	"github.com/MikeSquared-Agency/Destinasi/internal/metrics"
	"github.com/MikeSquared-Agency/Destinasi/internal/scoring"
	"github.com/MikeSquared-Agency/Destinasi/internal/service"
	"github.com/MikeSquared-Agency/Destinasi/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(os.Stdout, cfg.Logging.Format, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.Register()

	// Store
	var db store.Store
	if cfg.Database.URL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		db = pg
		log.Info("connected to database")
	} else {
		db = store.NewMemoryStore()
		log.Warn("no database configured, snapshots are kept in memory")
	}
	defer db.Close()

	// Events (optional)
	var eventsClient events.Client = events.Nop{}
	if cfg.Events.URL != "" {
		ec, err := events.NewNATSClient(ctx, cfg.Events.URL, log)
		if err != nil {
			log.Warn("failed to connect to events broker, running without events", "error", err)
		} else {
			eventsClient = ec
			defer ec.Close()
			log.Info("connected to events broker")
			if err := events.Audit(ec, log); err != nil {
				log.Warn("failed to subscribe to events", "error", err)
			}
		}
	}

	// Dataset
	ds, err := dataset.LoadFile(cfg.Dataset.Path, cfg.Dataset.IDColumn)
	if err != nil {
		log.Error("failed to load dataset", "path", cfg.Dataset.Path, "error", err)
		os.Exit(1)
	}
	log.Info("dataset loaded", "path", cfg.Dataset.Path, "destinations", ds.Len(), "criteria", len(ds.Criteria))

	// History (optional)
	var historyLogger service.HistoryLogger
	if cfg.History.Enabled {
		hl, err := history.NewCSVLogger(cfg.History.Dir)
		if err != nil {
			log.Error("failed to prepare history dir", "dir", cfg.History.Dir, "error", err)
			os.Exit(1)
		}
		historyLogger = hl
	}

	// Scoring
	opts, err := cfg.ScoringOptions()
	if err != nil {
		log.Error("invalid scoring options", "error", err)
		os.Exit(1)
	}
	method, err := scoring.ParseMethod(cfg.Scoring.DefaultMethod)
	if err != nil {
		log.Error("invalid default method", "error", err)
		os.Exit(1)
	}
	engine := scoring.NewEngine(scoring.NewRegistry(opts), log)
	svc := service.New(engine, db, eventsClient, historyLogger, service.Options{
		Dataset:        ds,
		DefaultMethod:  method,
		DefaultWeights: scoring.Weights(cfg.Scoring.DefaultWeights),
		Tolerance:      cfg.Scoring.WeightTolerance,
		ParetoEnabled:  cfg.Scoring.ParetoEnabled,
	}, log)

	// API server
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(svc, cfg, log),
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
	}

	go func() {
		log.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("API server error", "error", err)
		}
	}()

	go func() {
		log.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	log.Info("shutdown complete")
}
