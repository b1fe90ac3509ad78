// Package worker consumes ledger events and exports entries to the
// audit spreadsheet, with a periodic sweep as a backstop for lost
// messages.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"donnote/internal/amqp"
	"donnote/internal/core"
	"donnote/internal/ledger"
	"donnote/internal/sheets"
)

type ExportWorker struct {
	tracker   ledger.ExportTracker
	exporter  sheets.EntryExporter
	batchSize int
}

func NewExportWorker(tracker ledger.ExportTracker, exporter sheets.EntryExporter, batchSize int) *ExportWorker {
	return &ExportWorker{
		tracker:   tracker,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleEntryEvent processes one ledger event from the queue. Undo
// events only need a log line; the audit sheet keeps the full history.
func (w *ExportWorker) HandleEntryEvent(ctx context.Context, msg *amqp.EntryEvent) error {
	switch msg.Event {
	case amqp.EventEntryUndone:
		slog.InfoContext(ctx, "Entry undone, audit row kept",
			"user_id", msg.UserID,
			"entry_id", msg.EntryID)
		return nil
	case amqp.EventEntryRecorded:
		entry, err := w.tracker.GetEntry(ctx, msg.UserID, msg.EntryID)
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}
		return w.export(ctx, msg.UserID, entry.ID, entry)
	default:
		return fmt.Errorf("unknown event kind %q", msg.Event)
	}
}

// ProcessPending exports entries that never got an event, for example
// after a queue outage.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.tracker.PendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))
	for _, item := range pending {
		if err := w.export(ctx, item.UserID, item.Entry.ID, item.Entry); err != nil {
			slog.ErrorContext(ctx, "Failed to export entry",
				"entry_id", item.Entry.ID, "error", err)
		}
	}
	return nil
}

// StartupCheck drains a larger pending batch once at worker start to
// recover from downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.tracker.PendingExport(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending exports for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup", "count", len(pending))
	exported, failed := 0, 0
	for _, item := range pending {
		if err := w.export(ctx, item.UserID, item.Entry.ID, item.Entry); err != nil {
			slog.ErrorContext(ctx, "Failed to export entry during startup",
				"entry_id", item.Entry.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)
	return nil
}

// RunPeriodicSweep runs ProcessPending on a fixed interval until ctx
// is canceled.
func (w *ExportWorker) RunPeriodicSweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending export sweep failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *ExportWorker) export(ctx context.Context, userID, entryID string, entry core.Entry) error {
	ref, err := w.exporter.AppendEntry(ctx, userID, entry)
	if err != nil {
		if markErr := w.tracker.MarkExportError(ctx, entryID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "entry_id", entryID, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.tracker.MarkExported(ctx, entryID); err != nil {
		// The row landed; a stale status only means one redundant export.
		slog.ErrorContext(ctx, "Failed to mark as exported", "entry_id", entryID, "error", err)
	}

	slog.InfoContext(ctx, "Exported entry",
		"entry_id", entryID,
		"user_id", userID,
		"sheet_ref", ref,
		"amount_cents", entry.Amount.Cents)
	return nil
}
