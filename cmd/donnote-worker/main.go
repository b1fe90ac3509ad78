package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"donnote/internal/amqp"
	"donnote/internal/backend"
	"donnote/internal/config"
	"donnote/internal/sheets"
	"donnote/internal/sheets/google"
	sheetsmem "donnote/internal/sheets/memory"
	"donnote/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting donnote-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open ledger backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if store.Cleanup != nil {
		defer func() {
			if err := store.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}
	if store.Tracker == nil {
		logger.Error("Export worker needs a durable backend", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	var exporter sheets.EntryExporter
	if cfg.GoogleSpreadsheetID != "" {
		exporter, err = google.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Warn("No GOOGLE_SPREADSHEET_ID provided, exporting to in-memory sink")
		exporter = sheetsmem.New()
	}

	exportWorker := worker.NewExportWorker(store.Tracker, exporter, cfg.ExportBatchSize)

	logger.Info("Performing startup export check...")
	if err := exportWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup export check failed", "error", err)
		// Continue; the periodic sweep retries.
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumeEntryEvents(gctx, func(msg *amqp.EntryEvent) error {
				return exportWorker.HandleEntryEvent(gctx, msg)
			})
		})
	} else {
		logger.Info("No AMQP URL configured, relying on periodic sweep only")
	}

	g.Go(func() error {
		return exportWorker.RunPeriodicSweep(gctx, cfg.SweepInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
