// Agentic honeypot server: engages suspected scammers in conversation and
// reports extracted artifacts to an external collector.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/karshi-k/agentic-honeypot/internal/adapters/collector"
	"github.com/karshi-k/agentic-honeypot/internal/adapters/hfgen"
	"github.com/karshi-k/agentic-honeypot/internal/adapters/storage"
	"github.com/karshi-k/agentic-honeypot/internal/api"
	"github.com/karshi-k/agentic-honeypot/internal/application"
	"github.com/karshi-k/agentic-honeypot/internal/config"
	"github.com/karshi-k/agentic-honeypot/internal/domain/detection"
	"github.com/karshi-k/agentic-honeypot/internal/engage"
	"github.com/karshi-k/agentic-honeypot/internal/ports"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting honeypot server", "port", cfg.Port, "min_artifacts", cfg.FinalizeMinArtifacts)

	// Generation backend. Without a token the strategist still answers,
	// using its deterministic fallback for every detected scam.
	var generator ports.Generator
	if cfg.GenerationEnabled() {
		generator, err = hfgen.NewClient(cfg.HFToken, cfg.HFModel, cfg.GenerationTimeout)
		if err != nil {
			slog.Error("Failed to initialize generation client", "error", err)
			os.Exit(1)
		}
		slog.Info("Generation client ready", "model", cfg.HFModel)
	} else {
		generator = disabledGenerator{}
		slog.Warn("HF_TOKEN not set, replies will use the fixed fallback")
	}

	collectorClient, err := collector.NewHTTPClient(cfg.CollectorURL, cfg.CollectorTimeout)
	if err != nil {
		slog.Error("Failed to initialize collector client", "error", err)
		os.Exit(1)
	}

	// Optional Postgres archive of finalize reports.
	var archive ports.ReportArchive
	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresArchive(cfg.DatabaseURL)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := pg.Close(); closeErr != nil {
				slog.Error("Failed to close archive", "error", closeErr)
			}
		}()
		if err := pg.InitSchema(); err != nil {
			slog.Error("Failed to initialize archive schema", "error", err)
			os.Exit(1)
		}
		archive = pg
		slog.Info("Report archive connected")
	}

	pipeline := application.NewPipeline(
		detection.NewScorer(),
		detection.NewExtractor(),
		detection.NewFinalizePolicy(cfg.FinalizeMinArtifacts),
		engage.NewStrategist(generator, cfg.GenerationTimeout),
	)
	service := application.NewEngagementService(
		application.NewSessionStore(),
		pipeline,
		collectorClient,
		archive,
		cfg.HistoryLimit,
		cfg.CollectorTimeout,
	)

	router := api.NewRouter(api.NewHandler(service), cfg.APIKey)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}
}

// disabledGenerator stands in when no generation backend is configured.
type disabledGenerator struct{}

func (disabledGenerator) Generate(context.Context, []ports.Turn, int) (string, error) {
	return "", ports.ErrGenerationService
}
