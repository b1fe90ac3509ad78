// Package ledger defines the persistence ports for per-user append-only
// ledgers, plus the per-user mutual-exclusion guard every backend is
// wrapped in.
package ledger

import (
	"context"
	"errors"

	"donnote/internal/core"
)

// ErrEmptyLedger reports an undo against a ledger with no entries.
var ErrEmptyLedger = errors.New("ledger is empty")

type (
	// Store is the port for ledger persistence. A ledger is implicitly
	// created on the first append for a new user id. Entries are only
	// ever appended to the tail or removed from it.
	Store interface {
		// Append adds the entry to the tail of the user's ledger.
		Append(ctx context.Context, userID string, e core.Entry) error

		// UndoLast removes and returns the tail entry, or ErrEmptyLedger.
		UndoLast(ctx context.Context, userID string) (core.Entry, error)

		// Snapshot returns the user's entries in insertion order.
		Snapshot(ctx context.Context, userID string) ([]core.Entry, error)
	}

	// ExportItem is one entry awaiting export, with its owner.
	ExportItem struct {
		UserID string
		Entry  core.Entry
	}

	// ExportTracker is implemented by durable backends that track which
	// entries have been exported to the audit sheet.
	ExportTracker interface {
		// GetEntry fetches a single entry of a user by id.
		GetEntry(ctx context.Context, userID, entryID string) (core.Entry, error)

		// PendingExport lists entries not yet exported, oldest first.
		PendingExport(ctx context.Context, limit int) ([]ExportItem, error)

		MarkExported(ctx context.Context, entryID string) error
		MarkExportError(ctx context.Context, entryID string) error
	}
)
