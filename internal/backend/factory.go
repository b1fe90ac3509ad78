// Package backend opens the ledger store selected by DATA_BACKEND and
// wraps it in the per-user guard.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"donnote/internal/config"
	"donnote/internal/ledger"
	"donnote/internal/ledger/memory"
	"donnote/internal/ledger/postgres"
	"donnote/internal/ledger/sqlite"
)

// Result holds the opened store and, for durable backends, the export
// tracker the worker reads from.
type Result struct {
	Store ledger.Store

	// Tracker is nil for the memory backend.
	Tracker ledger.ExportTracker

	Cleanup func() error
}

// Open builds the configured ledger backend. The returned store is
// already guarded for per-user serialization.
func Open(ctx context.Context, cfg *config.Config) (*Result, error) {
	switch cfg.DataBackend {
	case "memory":
		slog.InfoContext(ctx, "Initialized memory backend")
		return &Result{Store: ledger.Guard(memory.New())}, nil

	case "sqlite":
		store, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		slog.InfoContext(ctx, "Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{
			Store:   ledger.Guard(store),
			Tracker: store,
			Cleanup: store.Close,
		}, nil

	case "postgres":
		store, err := postgres.NewFromURL(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres backend: %w", err)
		}
		slog.InfoContext(ctx, "Initialized postgres backend")
		return &Result{
			Store:   ledger.Guard(store),
			Tracker: store,
			Cleanup: func() error { store.Close(); return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported data backend %q", cfg.DataBackend)
	}
}
