// Package sqlite persists ledgers in a local SQLite database, one row per
// entry. Insertion order is carried by an autoincrement seq column, never
// by the entry id.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"donnote/internal/core"
	"donnote/internal/ledger"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

var (
	_ ledger.Store         = (*Store)(nil)
	_ ledger.ExportTracker = (*Store)(nil)
)

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const entryColumns = "id, kind, amount_cents, category_id, category_name, category_icon, note, entry_date"

func (s *Store) Append(ctx context.Context, userID string, e core.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, user_id, kind, amount_cents, category_id, category_name, category_icon, note, entry_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, userID, string(e.Kind), e.Amount.Cents,
		e.CategoryID, e.CategoryName, e.CategoryIcon, e.Note, string(e.Date))
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"entry_id", e.ID,
		"user_id", userID,
		"kind", e.Kind,
		"amount_cents", e.Amount.Cents,
		"category_id", e.CategoryID)

	return nil
}

func (s *Store) UndoLast(ctx context.Context, userID string) (core.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Entry{}, fmt.Errorf("begin undo transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE user_id = ? ORDER BY seq DESC LIMIT 1`,
		userID)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Entry{}, ledger.ErrEmptyLedger
		}
		return core.Entry{}, fmt.Errorf("select last entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, e.ID); err != nil {
		return core.Entry{}, fmt.Errorf("delete last entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Entry{}, fmt.Errorf("commit undo: %w", err)
	}

	slog.InfoContext(ctx, "Entry removed from SQLite",
		"entry_id", e.ID,
		"user_id", userID,
		"amount_cents", e.Amount.Cents)

	return e, nil
}

func (s *Store) Snapshot(ctx context.Context, userID string) ([]core.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE user_id = ? ORDER BY seq ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// GetEntry implements ledger.ExportTracker.
func (s *Store) GetEntry(ctx context.Context, userID, entryID string) (core.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE user_id = ? AND id = ?`,
		userID, entryID)
	e, err := scanEntry(row)
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry %s: %w", entryID, err)
	}
	return e, nil
}

// PendingExport implements ledger.ExportTracker.
func (s *Store) PendingExport(ctx context.Context, limit int) ([]ledger.ExportItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, `+entryColumns+` FROM entries WHERE export_status = 'pending' ORDER BY seq ASC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query pending entries: %w", err)
	}
	defer rows.Close()

	var items []ledger.ExportItem
	for rows.Next() {
		var (
			userID string
			e      core.Entry
		)
		if err := rows.Scan(&userID, &e.ID, &e.Kind, &e.Amount.Cents,
			&e.CategoryID, &e.CategoryName, &e.CategoryIcon, &e.Note, &e.Date); err != nil {
			return nil, fmt.Errorf("scan pending entry: %w", err)
		}
		items = append(items, ledger.ExportItem{UserID: userID, Entry: e})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending entries: %w", err)
	}
	return items, nil
}

// MarkExported implements ledger.ExportTracker.
func (s *Store) MarkExported(ctx context.Context, entryID string) error {
	if err := s.setExportStatus(ctx, entryID, "exported"); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Entry marked as exported", "entry_id", entryID)
	return nil
}

// MarkExportError implements ledger.ExportTracker.
func (s *Store) MarkExportError(ctx context.Context, entryID string) error {
	if err := s.setExportStatus(ctx, entryID, "error"); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Entry marked with export error", "entry_id", entryID)
	return nil
}

func (s *Store) setExportStatus(ctx context.Context, entryID, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE entries SET export_status = ? WHERE id = ?`, status, entryID)
	if err != nil {
		return fmt.Errorf("set export status %s: %w", status, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (core.Entry, error) {
	var e core.Entry
	err := row.Scan(&e.ID, &e.Kind, &e.Amount.Cents,
		&e.CategoryID, &e.CategoryName, &e.CategoryIcon, &e.Note, &e.Date)
	return e, err
}
